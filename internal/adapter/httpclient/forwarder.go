package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

var _ secondary.TaskForwarder = (*WorkerClient)(nil)

// WorkerClient forwards tasks to fog nodes over HTTP
type WorkerClient struct {
	client *http.Client
}

func NewWorkerClient(client *http.Client) *WorkerClient {
	return &WorkerClient{client: client}
}

// Forward posts the task to the node's /offload_task endpoint. Every failure,
// including an answer without a task id, is an ErrForwardFailure.
func (c *WorkerClient) Forward(ctx context.Context, node domain.Node, task domain.TaskRequest) (*domain.TaskMetrics, error) {
	var metrics domain.TaskMetrics
	if err := postJSON(ctx, c.client, node.URL+"/offload_task", task, &metrics); err != nil {
		return nil, fmt.Errorf("%w: node %s: %v", errs.ErrForwardFailure, node.ID, err)
	}
	if metrics.TaskID == "" {
		return nil, fmt.Errorf("%w: node %s: response carries no task_id", errs.ErrForwardFailure, node.ID)
	}
	return &metrics, nil
}
