package secondary

import (
	"context"

	"gitlab.com/fog-offload.net/internal/domain"
)

// TaskForwarder sends a task to a fog node and returns the node's metrics
type TaskForwarder interface {
	Forward(ctx context.Context, node domain.Node, task domain.TaskRequest) (*domain.TaskMetrics, error)
}
