package execution

import (
	"context"

	"gitlab.com/fog-offload.net/internal/domain"
)

// IExecutionService runs offloaded tasks on a fog node
type IExecutionService interface {
	// Execute answers a task from cache or by running the cost model
	Execute(ctx context.Context, task domain.TaskRequest) (*domain.TaskMetrics, error)

	// InFlight is the number of tasks currently occupying the node
	InFlight() int
}
