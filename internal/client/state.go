package client

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

const (
	statePath  = "/api/state"
	eventsPath = "/events"
)

// GetState fetches the full repository snapshot
func (c *Client) GetState(ctx context.Context) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := c.doRequest(ctx, http.MethodGet, statePath, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// OpenEvents opens the server-sent event stream. The caller owns the
// returned body and must close it.
func (c *Client) OpenEvents(ctx context.Context) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, eventsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to open event stream", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperrors.NewHTTPStatusError(resp.StatusCode, resp.Status, "")
	}

	c.logger.WithField("url", c.baseURL+eventsPath).Debug("Event stream opened")
	return resp.Body, nil
}

// RetryRepo asks the server to retry a failed repository. The new status
// arrives with the next snapshot.
func (c *Client) RetryRepo(ctx context.Context, name string) error {
	if name == "" {
		return apperrors.NewValidationError("repository name cannot be empty", nil)
	}
	if _, err := c.doAction(ctx, "/api/repos/"+url.PathEscape(name)+"/retry", nil); err != nil {
		c.logger.WithFields(logrus.Fields{
			"repo":  name,
			"error": err,
		}).Warn("Retry request failed")
		return err
	}
	return nil
}

// Logs fetches the raw migration log text of a repository
func (c *Client) Logs(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", apperrors.NewValidationError("repository name cannot be empty", nil)
	}
	data, err := c.doRaw(ctx, http.MethodGet, logsPath(name), nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DownloadLogs asks the server to fetch and cache the logs of a repository,
// then returns them
func (c *Client) DownloadLogs(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", apperrors.NewValidationError("repository name cannot be empty", nil)
	}
	if _, err := c.doAction(ctx, logsPath(name)+"/download", nil); err != nil {
		return "", err
	}
	return c.Logs(ctx, name)
}

func logsPath(name string) string {
	return "/api/logs/" + url.PathEscape(name)
}
