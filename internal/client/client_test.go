package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/migration-monitor/internal/config"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

const (
	testStateBody = `{
		"sourceOrg": "acme",
		"targetOrg": "acme-cloud",
		"repos": {
			"api": {"status": "synced", "elapsedSeconds": 42, "metadata": {"size": 512}},
			"web": {"status": "failed", "errorMessage": "auth error"}
		}
	}`

	testCompareBody = `{
		"syncId": 7,
		"source": {"org": "acme"},
		"target": {"org": "acme-cloud"},
		"settings": [
			{"key": "has_wiki", "sourceValue": true, "targetValue": false, "isEqual": false, "canSync": true}
		],
		"warnings": ["copilot seats unavailable"]
	}`
)

func setupTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.ClientConfig{BaseURL: server.URL + "/", Timeout: 5 * time.Second}, logger)
}

func TestClient_GetState(t *testing.T) {
	ctx := context.Background()

	t.Run("successful request", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/state", r.URL.Path)
			w.Write([]byte(testStateBody))
		})

		snapshot, err := client.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "acme", snapshot.SourceOrg)
		require.Len(t, snapshot.Repos, 2)
		assert.Equal(t, models.StatusFailed, snapshot.Repos["web"].Status)
		assert.Equal(t, int64(512), snapshot.Repos["api"].SizeKB())
	})

	t.Run("non-2xx status", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.GetState(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsHTTPStatus(err))
		assert.Equal(t, http.StatusBadGateway, apperrors.StatusCode(err))
		assert.Equal(t, "502 Bad Gateway", apperrors.UserMessage(err))
	})

	t.Run("malformed payload", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"repos": [`))
		})

		_, err := client.GetState(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsTransport(err))
	})

	t.Run("server unreachable", func(t *testing.T) {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := NewClient(&config.ClientConfig{BaseURL: server.URL, Timeout: time.Second}, logger)

		_, err := client.GetState(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsTransport(err))
	})
}

func TestClient_OpenEvents(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: heartbeat\ndata: \n\n"))
	})

	body, err := client.OpenEvents(context.Background())
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "event: heartbeat\ndata: \n\n", string(data))
}

func TestClient_RetryRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/repos/my-repo/retry", r.URL.Path)
			w.Write([]byte(`{"success": true}`))
		})
		assert.NoError(t, client.RetryRepo(ctx, "my-repo"))
	})

	t.Run("declared failure", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": false, "error": "repo is not failed"}`))
		})
		err := client.RetryRepo(ctx, "my-repo")
		require.Error(t, err)
		assert.True(t, apperrors.IsApplication(err))
		assert.Equal(t, "repo is not failed", apperrors.UserMessage(err))
	})

	t.Run("empty name", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		assert.True(t, apperrors.IsValidationError(client.RetryRepo(ctx, "")))
	})
}

func TestClient_Workers(t *testing.T) {
	ctx := context.Background()

	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/migration-worker":
			assert.Equal(t, http.MethodGet, r.Method)
			w.Write([]byte(`{"running": true, "currentRepo": "api", "inProgress": 2, "maxConcurrent": 4}`))
		case "/api/migration-worker/stop":
			w.Write([]byte(`{"success": false, "message": "already stopping"}`))
		case "/api/migration-worker/start":
			w.Write([]byte(`{"success": true, "message": "started"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	status, err := client.GetWorkerStatus(ctx, "/api/migration-worker")
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "api", status.Current())
	require.NotNil(t, status.MaxConcurrent)
	assert.Equal(t, 4, *status.MaxConcurrent)

	assert.NoError(t, client.PostWorkerAction(ctx, "/api/migration-worker/start"))

	err = client.PostWorkerAction(ctx, "/api/migration-worker/stop")
	assert.True(t, apperrors.IsApplication(err))
	assert.Equal(t, "already stopping", apperrors.UserMessage(err))
}

func TestClient_Logs(t *testing.T) {
	ctx := context.Background()
	downloaded := false

	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/logs/api/download":
			downloaded = true
			w.Write([]byte(`{"success": true}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/logs/api":
			if !downloaded {
				w.Write([]byte("no logs cached"))
				return
			}
			w.Write([]byte("line 1\nline 2\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	logs, err := client.Logs(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, "no logs cached", logs)

	logs, err = client.DownloadLogs(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", logs)
}

func TestClient_CompareSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("comparison", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/syncs/7/settings", r.URL.Path)
			w.Write([]byte(testCompareBody))
		})

		result, err := client.CompareSettings(ctx, models.SyncID("7"))
		require.NoError(t, err)
		assert.Equal(t, "7", result.SyncID.String())
		require.Len(t, result.Settings, 1)
		assert.True(t, result.Settings[0].CanSync)
		assert.Equal(t, []string{"copilot seats unavailable"}, result.Warnings)
	})

	t.Run("error body", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": "sync not found"}`))
		})

		_, err := client.CompareSettings(ctx, models.SyncID("7"))
		require.Error(t, err)
		assert.True(t, apperrors.IsApplication(err))
		assert.Equal(t, "sync not found", apperrors.UserMessage(err))
	})

	t.Run("error body with status", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "token expired"}`))
		})

		_, err := client.CompareSettings(ctx, models.SyncID("7"))
		require.Error(t, err)
		assert.True(t, apperrors.IsHTTPStatus(err))
		assert.Equal(t, "token expired", apperrors.UserMessage(err))
	})
}

func TestClient_ApplySettings(t *testing.T) {
	ctx := context.Background()

	t.Run("partial result is returned", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/syncs/7/settings/apply", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body applyRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"a", "b"}, body.Settings)

			w.Write([]byte(`{"success": false, "applied": ["a"], "failed": [{"key": "b", "error": "forbidden"}]}`))
		})

		result, err := client.ApplySettings(ctx, models.SyncID("7"), []string{"a", "b"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, []string{"a"}, result.Applied)
		assert.Equal(t, []string{"b"}, result.FailedKeys())
	})

	t.Run("bare error", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": "target org is read-only"}`))
		})

		_, err := client.ApplySettings(ctx, models.SyncID("7"), []string{"a"})
		require.Error(t, err)
		assert.True(t, apperrors.IsApplication(err))
		assert.Equal(t, "target org is read-only", apperrors.UserMessage(err))
	})

	t.Run("empty selection", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := client.ApplySettings(ctx, models.SyncID("7"), nil)
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestClient_ListSyncsAndCategories(t *testing.T) {
	ctx := context.Background()
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/syncs":
			w.Write([]byte(`[{"id": 1, "name": "main", "archived": false, "source": {"org": "a"}, "target": {"org": "b"}}]`))
		case "/api/settings/categories":
			w.Write([]byte(`[{"id": "general", "name": "General", "settings": [{"key": "has_wiki", "label": "Wiki", "type": "normal"}]}]`))
		}
	})

	syncs, err := client.ListSyncs(ctx)
	require.NoError(t, err)
	require.Len(t, syncs, 1)
	assert.Equal(t, "1", syncs[0].ID.String())
	assert.Equal(t, "b", syncs[0].Target.Org)

	categories, err := client.SettingCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, models.SettingNormal, categories[0].Settings[0].Type)
}
