package secondary

import (
	"context"

	"gitlab.com/fog-offload.net/internal/domain"
)

// StatusRepository persists the latest status record per fog node
type StatusRepository interface {
	// SaveStatus upserts the record under its node id
	SaveStatus(ctx context.Context, record domain.StatusRecord) error

	// GetStatus retrieves a node's record, nil when absent
	GetStatus(ctx context.Context, nodeID string) (*domain.StatusRecord, error)

	// GetAllStatuses retrieves every stored record
	GetAllStatuses(ctx context.Context) ([]domain.StatusRecord, error)
}

// StatusPusher delivers a status record to the manager
type StatusPusher interface {
	PushStatus(ctx context.Context, record domain.StatusRecord) error
}
