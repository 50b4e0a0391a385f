package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/history"
	"github.com/Kamar-Folarin/migration-monitor/internal/live"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
	"github.com/Kamar-Folarin/migration-monitor/internal/settings"
	"github.com/Kamar-Folarin/migration-monitor/internal/worker"
)

// Dashboard is the read model the API serves
type Dashboard interface {
	ViewFor(q projection.Query) projection.View
	Stats() projection.Stats
	Summary() projection.SummaryDisplay
	Header() projection.Header
	Connection() live.Status
	WorkerSnapshots() []worker.Snapshot
	ToggleWorker(ctx context.Context, kind worker.Kind) error
	RetryRepo(ctx context.Context, name string) error
	SyncConfigs(ctx context.Context) ([]models.SyncConfigSummary, error)
	LoadSettings(ctx context.Context, syncID models.SyncID) (settings.Report, error)
}

// HistoryReader lists journaled snapshot statistics
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Handler serves the read-model API
type Handler struct {
	dashboard Dashboard
	history   HistoryReader
	logger    *logrus.Logger
}

// NewHandler creates a new Handler. history may be nil.
func NewHandler(dashboard Dashboard, history HistoryReader, logger *logrus.Logger) *Handler {
	return &Handler{
		dashboard: dashboard,
		history:   history,
		logger:    logger,
	}
}

// ListRepos handles GET /repos
func (h *Handler) ListRepos(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	view := h.dashboard.ViewFor(q)
	c.JSON(http.StatusOK, RepoListResponse{
		Rows:      view.Rows,
		Waiting:   view.Waiting,
		Empty:     view.Empty,
		NoResults: view.NoResults,
		Sort:      string(q.Sort),
		Direction: string(q.Direction),
	})
}

// RetryRepo handles POST /repos/:name/retry
func (h *Handler) RetryRepo(c *gin.Context) {
	name := c.Param("name")
	if err := h.dashboard.RetryRepo(c.Request.Context(), name); err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "retry requested", "repo": name})
}

// GetStats handles GET /stats
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		Header:     h.dashboard.Header(),
		Stats:      h.dashboard.Stats(),
		Connection: h.dashboard.Connection(),
	})
}

// GetSummary handles GET /summary
func (h *Handler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Summary())
}

// ListWorkers handles GET /workers
func (h *Handler) ListWorkers(c *gin.Context) {
	c.JSON(http.StatusOK, WorkerListResponse{Workers: h.dashboard.WorkerSnapshots()})
}

// ToggleWorker handles POST /workers/:kind/toggle
func (h *Handler) ToggleWorker(c *gin.Context) {
	kind, ok := worker.ParseKind(c.Param("kind"))
	if !ok {
		h.respondWithError(c, apperrors.NewValidationError("unknown worker: "+c.Param("kind"), nil))
		return
	}

	if err := h.dashboard.ToggleWorker(c.Request.Context(), kind); err != nil {
		h.respondWithError(c, err)
		return
	}

	for _, snap := range h.dashboard.WorkerSnapshots() {
		if snap.Name == kind {
			c.JSON(http.StatusOK, snap)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// ListSyncs handles GET /syncs
func (h *Handler) ListSyncs(c *gin.Context) {
	syncs, err := h.dashboard.SyncConfigs(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, syncs)
}

// GetSettings handles GET /settings/:syncId
func (h *Handler) GetSettings(c *gin.Context) {
	syncID := models.SyncID(c.Param("syncId"))
	report, err := h.dashboard.LoadSettings(c.Request.Context(), syncID)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetHistory handles GET /history
func (h *Handler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "history journal is not configured"})
		return
	}

	limit, err := getIntQueryParam(c, "limit", 20)
	if err != nil {
		h.respondWithError(c, apperrors.NewValidationError("invalid limit parameter", err))
		return
	}

	entries, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func parseQuery(c *gin.Context) (projection.Query, error) {
	q := projection.DefaultQuery()
	q.Name = c.Query("name")

	var statuses []models.RepoStatus
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, ok := models.ParseStatus(strings.TrimSpace(part))
			if !ok {
				return q, apperrors.NewValidationError("invalid status parameter: "+part, nil)
			}
			statuses = append(statuses, status)
		}
	}
	if len(statuses) > 0 {
		q.Statuses = projection.NewStatusSet(statuses...)
	}

	if raw := c.Query("sort"); raw != "" {
		col, ok := projection.ParseSortColumn(raw)
		if !ok {
			return q, apperrors.NewValidationError("invalid sort parameter: "+raw, nil)
		}
		q.Sort = col
	}

	switch dir := projection.Direction(c.DefaultQuery("dir", string(projection.Ascending))); dir {
	case projection.Ascending, projection.Descending:
		q.Direction = dir
	default:
		return q, apperrors.NewValidationError("invalid dir parameter: "+string(dir), nil)
	}

	return q, nil
}

func (h *Handler) respondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case stderrors.Is(err, worker.ErrBusy):
		status = http.StatusConflict
	case apperrors.IsValidationError(err):
		status = http.StatusBadRequest
	case apperrors.IsApplication(err):
		status = http.StatusUnprocessableEntity
	case apperrors.IsHTTPStatus(err), apperrors.IsTransport(err):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err,
		}).Error("Request failed")
	}
	c.JSON(status, ErrorResponse{Error: apperrors.UserMessage(err), Type: string(apperrors.TypeOf(err))})
}

func getIntQueryParam(c *gin.Context, param string, defaultValue int) (int, error) {
	value := c.Query(param)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
