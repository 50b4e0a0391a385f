// Package format renders durations, sizes, timestamps and setting values
// for display. Every function is pure; absent or zero inputs render as
// Placeholder rather than "0" or "NaN".
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// Placeholder is shown for absent or zero figures
const Placeholder = "-"

// Duration formats whole seconds as "Ns", "Mm Ss" or "Hh Mm Ss"
func Duration(seconds int64) string {
	if seconds <= 0 {
		return Placeholder
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// MinutesSeconds formats fractional seconds as "Ns" below a minute and
// "Mm Ss" otherwise, without rolling over into hours
func MinutesSeconds(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Placeholder
	}
	rounded := int64(math.Round(seconds))
	if rounded < 60 {
		return fmt.Sprintf("%ds", rounded)
	}
	return fmt.Sprintf("%dm %ds", rounded/60, rounded%60)
}

// ElapsedSeconds returns the elapsed seconds to display for rec at now.
// An in-flight record is computed live from startedAt and a synced record
// uses the server's elapsedSeconds. Every other status has nothing to show
// and ok is false.
func ElapsedSeconds(rec models.RepoSyncRecord, now time.Time) (seconds int64, ok bool) {
	if rec.InFlight() {
		live := int64(now.Sub(rec.StartedAt.Time) / time.Second)
		if live < 0 {
			live = 0
		}
		return live, true
	}
	if rec.Status != models.StatusSynced || rec.ElapsedSeconds == nil {
		return 0, false
	}
	return *rec.ElapsedSeconds, true
}

// Elapsed formats the elapsed time of rec at now
func Elapsed(rec models.RepoSyncRecord, now time.Time) string {
	seconds, ok := ElapsedSeconds(rec, now)
	if !ok {
		return Placeholder
	}
	if seconds == 0 {
		return "0s"
	}
	return Duration(seconds)
}

// Bytes formats a size given in KB using binary units
func Bytes(kb int64) string {
	if kb <= 0 {
		return Placeholder
	}
	const unit = 1024.0
	if kb < unit {
		return fmt.Sprintf("%d KB", kb)
	}

	value := float64(kb) / unit
	exp := 0
	for value >= unit && exp < 2 {
		value /= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", value, "MGT"[exp])
}

// Relative formats t relative to now ("just now", "5 minutes ago")
func Relative(t *models.Timestamp, now time.Time) string {
	if !t.Valid() {
		return Placeholder
	}
	d := now.Sub(t.Time)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Timestamp formats t as local RFC 3339
func Timestamp(t *models.Timestamp) string {
	if !t.Valid() {
		return Placeholder
	}
	return t.Local().Format(time.RFC3339)
}
