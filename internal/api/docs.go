package api

import (
	"github.com/Kamar-Folarin/migration-monitor/internal/live"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
	"github.com/Kamar-Folarin/migration-monitor/internal/worker"

	_ "github.com/Kamar-Folarin/migration-monitor/docs"
)

// ErrorResponse represents an API error
// @Description Error returned by every endpoint on failure
// @swagger:model ErrorResponse
type ErrorResponse struct {
	// Human readable message
	Error string `json:"error" example:"unknown worker: cleanup"`
	// Error class, one of TRANSPORT, HTTP_STATUS, APPLICATION, PARTIAL, DATA_ABSENCE, INVALID_INPUT
	Type string `json:"type,omitempty" example:"INVALID_INPUT"`
}

// RepoListResponse is the filtered and sorted repository projection
// @Description Display-ready repository rows
// @swagger:model RepoListResponse
type RepoListResponse struct {
	Rows []projection.Row `json:"rows"`
	// Set until the first snapshot arrives
	Waiting bool `json:"waiting"`
	// Set when there are no repositories at all
	Empty bool `json:"empty"`
	// Set when the filters removed every repository
	NoResults bool   `json:"noResults"`
	Sort      string `json:"sort" example:"name"`
	Direction string `json:"direction" example:"asc"`
}

// StatsResponse carries the per-status counts of the current snapshot
// @swagger:model StatsResponse
type StatsResponse struct {
	Header     projection.Header `json:"header"`
	Stats      projection.Stats  `json:"stats"`
	Connection live.Status       `json:"connection"`
}

// WorkerListResponse carries every worker tracker
// @swagger:model WorkerListResponse
type WorkerListResponse struct {
	Workers []worker.Snapshot `json:"workers"`
}
