package httpclient

import (
	"context"
	"net/http"
	"strings"

	"gitlab.com/fog-offload.net/internal/domain"
)

// ManagerClient submits tasks to the manager on behalf of a device
type ManagerClient struct {
	managerURL string
	client     *http.Client
}

func NewManagerClient(managerURL string, client *http.Client) *ManagerClient {
	return &ManagerClient{managerURL: strings.TrimRight(managerURL, "/"), client: client}
}

func (c *ManagerClient) Offload(ctx context.Context, task domain.TaskRequest) (*domain.TaskMetrics, error) {
	var metrics domain.TaskMetrics
	if err := postJSON(ctx, c.client, c.managerURL+"/offload_task", task, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
