package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// ListSyncs lists the configured sync pairs
func (c *Client) ListSyncs(ctx context.Context) ([]models.SyncConfigSummary, error) {
	var syncs []models.SyncConfigSummary
	if err := c.doRequest(ctx, http.MethodGet, "/api/syncs", nil, &syncs); err != nil {
		return nil, err
	}
	return syncs, nil
}

// SettingCategories fetches the static setting definitions
func (c *Client) SettingCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.doRequest(ctx, http.MethodGet, "/api/settings/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CompareSettings fetches the source/target comparison of a sync
// configuration. A body carrying only {error} is an application error.
func (c *Client) CompareSettings(ctx context.Context, syncID models.SyncID) (*models.SyncConfigComparisonResult, error) {
	data, err := c.doRaw(ctx, http.MethodGet, settingsPath(syncID), nil)
	if err != nil {
		return nil, err
	}

	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return nil, apperrors.NewTransportError("failed to decode response", err)
	}
	if eb.Error != "" {
		return nil, apperrors.NewApplicationError(eb.Error)
	}

	var result models.SyncConfigComparisonResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, apperrors.NewTransportError("failed to decode response", err)
	}
	return &result, nil
}

type applyRequest struct {
	Settings []string `json:"settings"`
}

// ApplySettings writes the given source values to the target. The reply is
// returned as-is when it reports per-key results, even with success false;
// a bare {error} reply is an application error.
func (c *Client) ApplySettings(ctx context.Context, syncID models.SyncID, keys []string) (*models.ApplyResult, error) {
	if len(keys) == 0 {
		return nil, apperrors.NewValidationError("no settings selected", nil)
	}

	var result models.ApplyResult
	if err := c.doRequest(ctx, http.MethodPost, settingsPath(syncID)+"/apply", applyRequest{Settings: keys}, &result); err != nil {
		return nil, err
	}
	if !result.Success && len(result.Applied) == 0 && len(result.Failed) == 0 {
		return nil, apperrors.NewApplicationError(result.Error)
	}
	return &result, nil
}

func settingsPath(syncID models.SyncID) string {
	return "/api/syncs/" + url.PathEscape(syncID.String()) + "/settings"
}
