package client

import (
	"context"
	"net/http"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// GetWorkerStatus polls a worker status endpoint
func (c *Client) GetWorkerStatus(ctx context.Context, path string) (*models.WorkerStatus, error) {
	var status models.WorkerStatus
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// PostWorkerAction calls a worker start or stop endpoint. A reply with
// success false is returned as an application error.
func (c *Client) PostWorkerAction(ctx context.Context, path string) error {
	_, err := c.doAction(ctx, path, nil)
	return err
}
