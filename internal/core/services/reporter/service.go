package reporter

import (
	"context"

	"gitlab.com/fog-offload.net/internal/domain"
)

// IStatusReporter publishes a fog node's load to the manager
type IStatusReporter interface {
	// Snapshot gathers the node's current status record
	Snapshot(ctx context.Context) (domain.StatusRecord, error)

	// ReportOnce gathers and pushes one status record, retrying on failure
	ReportOnce(ctx context.Context) error
}

// QueueSource exposes the number of tasks occupying the node
type QueueSource interface {
	InFlight() int
}
