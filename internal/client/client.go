package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/migration-monitor/internal/config"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// Client talks to the migration dashboard server
type Client struct {
	baseURL string
	http    *http.Client
	// stream has no overall timeout; the event stream stays open indefinitely
	stream *http.Client
	logger *logrus.Logger
}

// ClientOption allows configuring the dashboard client
type ClientOption func(*Client)

// WithHTTPClient replaces the client used for request/response calls
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithStreamClient replaces the client used for the event stream
func WithStreamClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.stream = h
	}
}

// NewClient creates a new dashboard client
func NewClient(cfg *config.ClientConfig, logger *logrus.Logger, opts ...ClientOption) *Client {
	if cfg == nil {
		cfg = config.DefaultClientConfig()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		stream:  &http.Client{},
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the server root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the {error, message} shape the server uses for failures
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doRaw performs a request and returns the body of a 2xx reply
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	logger := c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	})

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Debug("Request failed")
		return nil, apperrors.NewTransportError("request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		logger.WithField("status", resp.StatusCode).Debug("Request returned non-2xx status")
		return nil, apperrors.NewHTTPStatusError(resp.StatusCode, resp.Status, eb.text())
	}

	logger.WithField("status", resp.StatusCode).Debug("Request completed")
	return data, nil
}

// doRequest performs a request and decodes a JSON reply into result
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	data, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return apperrors.NewTransportError("failed to decode response", err)
	}
	return nil
}

// doAction performs a mutating call answered with {success, message, error}.
// A declared failure becomes an application error.
func (c *Client) doAction(ctx context.Context, path string, body interface{}) (*models.ActionResult, error) {
	var reply models.ActionResult
	if err := c.doRequest(ctx, http.MethodPost, path, body, &reply); err != nil {
		return nil, err
	}
	if !reply.Success {
		return &reply, apperrors.NewApplicationError(reply.Reason())
	}
	return &reply, nil
}
