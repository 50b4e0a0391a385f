package projection

import (
	"math"
	"time"

	"github.com/Kamar-Folarin/migration-monitor/internal/format"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// parallelism models the number of concurrent migrations used for the
// wall-clock estimate
const parallelism = 10

// Stats holds per-status record counts
type Stats struct {
	Total    int                       `json:"total"`
	ByStatus map[models.RepoStatus]int `json:"byStatus"`
}

// Count returns the number of records with status
func (s Stats) Count(status models.RepoStatus) int {
	return s.ByStatus[status]
}

func (s Stats) clone() Stats {
	out := Stats{Total: s.Total, ByStatus: make(map[models.RepoStatus]int, len(s.ByStatus))}
	for k, v := range s.ByStatus {
		out.ByStatus[k] = v
	}
	return out
}

// ComputeStats counts records per status
func ComputeStats(records map[string]models.RepoSyncRecord, excludeDeleted bool) Stats {
	stats := Stats{ByStatus: make(map[models.RepoStatus]int, len(models.Statuses))}
	for _, status := range models.Statuses {
		if excludeDeleted && status == models.StatusDeleted {
			continue
		}
		stats.ByStatus[status] = 0
	}

	for _, rec := range records {
		if excludeDeleted && rec.IsDeleted() {
			continue
		}
		stats.Total++
		stats.ByStatus[rec.Status.Normalize()]++
	}
	return stats
}

// Summary holds the aggregate figures of a snapshot
type Summary struct {
	// OldestChecked is the least recent lastChecked of non-deleted records
	OldestChecked        *models.Timestamp `json:"oldestChecked,omitempty"`
	TotalSizeKB          int64             `json:"totalSizeKb"`
	TotalDurationSeconds int64             `json:"totalDurationSeconds"`
	WallClockSeconds     int64             `json:"wallClockSeconds"`
	SecondsPerMB         float64           `json:"secondsPerMb"`
}

// SummaryDisplay is the rendered form of Summary
type SummaryDisplay struct {
	SyncRecency   string `json:"syncRecency"`
	TotalSize     string `json:"totalSize"`
	TotalDuration string `json:"totalDuration"`
	WallClock     string `json:"wallClock"`
	PerMB         string `json:"perMb"`
}

// ComputeSummary derives the aggregate figures of records
func ComputeSummary(records map[string]models.RepoSyncRecord) Summary {
	var summary Summary

	for _, rec := range records {
		if rec.IsDeleted() {
			continue
		}
		if rec.LastChecked.Valid() {
			if summary.OldestChecked == nil || rec.LastChecked.Before(summary.OldestChecked.Time) {
				checked := *rec.LastChecked
				summary.OldestChecked = &checked
			}
		}
		if rec.Metadata != nil && rec.Metadata.Size != nil {
			summary.TotalSizeKB += *rec.Metadata.Size
		}
		if rec.ElapsedSeconds != nil && *rec.ElapsedSeconds > 0 {
			summary.TotalDurationSeconds += *rec.ElapsedSeconds
		}
	}

	if summary.TotalDurationSeconds > 0 {
		summary.WallClockSeconds = int64(math.Ceil(float64(summary.TotalDurationSeconds) / parallelism))
		if summary.TotalSizeKB > 0 {
			summary.SecondsPerMB = float64(summary.TotalDurationSeconds) / (float64(summary.TotalSizeKB) / 1024)
		}
	}
	return summary
}

// Display renders every figure, using the placeholder for absent values
func (s Summary) Display(now time.Time) SummaryDisplay {
	return SummaryDisplay{
		SyncRecency:   format.Relative(s.OldestChecked, now),
		TotalSize:     format.Bytes(s.TotalSizeKB),
		TotalDuration: format.Duration(s.TotalDurationSeconds),
		WallClock:     format.Duration(s.WallClockSeconds),
		PerMB:         format.MinutesSeconds(s.SecondsPerMB),
	}
}
