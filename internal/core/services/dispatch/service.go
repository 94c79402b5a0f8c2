package dispatch

import (
	"context"

	"gitlab.com/fog-offload.net/internal/domain"
)

// IDispatchService routes tasks to the least loaded fresh fog node
type IDispatchService interface {
	// Offload selects a node, forwards the task and relays the node's metrics.
	// Every call leaves exactly one audit record.
	Offload(ctx context.Context, task domain.TaskRequest) (*domain.TaskMetrics, error)

	// Reject audits a request refused before it could be decoded
	Reject(ctx context.Context, task domain.TaskRequest, cause error)

	// Overview reports every known node with its freshness and score
	Overview(ctx context.Context) ([]NodeOverview, error)
}

// NodeOverview is the manager's view of one fog node
type NodeOverview struct {
	Record     domain.StatusRecord `json:"status"`
	Fresh      bool                `json:"fresh"`
	AgeSeconds float64             `json:"age_seconds"`
	Score      *float64            `json:"score"`
	Selectable bool                `json:"selectable"`
}
