package httpclient

import (
	"context"
	"net/http"
	"strings"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
)

var _ secondary.StatusPusher = (*StatusClient)(nil)

// StatusClient pushes status records to the manager
type StatusClient struct {
	managerURL string
	client     *http.Client
}

func NewStatusClient(managerURL string, client *http.Client) *StatusClient {
	return &StatusClient{managerURL: strings.TrimRight(managerURL, "/"), client: client}
}

func (c *StatusClient) PushStatus(ctx context.Context, record domain.StatusRecord) error {
	return postJSON(ctx, c.client, c.managerURL+"/status_update", record, nil)
}
