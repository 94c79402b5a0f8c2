package registry

import (
	"context"
	"time"

	"gitlab.com/fog-offload.net/internal/domain"
)

// IStatusRegistry defines the manager's view of fog node health
type IStatusRegistry interface {
	// Update upserts a node's status, stamping it with the receipt time
	Update(ctx context.Context, record domain.StatusRecord, now time.Time) error

	// Eligible returns every record received within the staleness threshold
	Eligible(ctx context.Context, now time.Time) ([]domain.StatusRecord, error)

	// All returns every record, fresh or stale
	All(ctx context.Context) ([]domain.StatusRecord, error)

	// Threshold is the maximum age of a selectable record
	Threshold() time.Duration
}
