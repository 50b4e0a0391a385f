package projection

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// Header describes the source and target of the migration
type Header struct {
	SourceEnt  string `json:"sourceEnt,omitempty"`
	SourceOrg  string `json:"sourceOrg,omitempty"`
	SourceHost string `json:"sourceHost,omitempty"`
	TargetEnt  string `json:"targetEnt,omitempty"`
	TargetOrg  string `json:"targetOrg,omitempty"`
	TargetHost string `json:"targetHost,omitempty"`
}

// Model holds the canonical map of repo-sync records. Snapshots replace
// the map wholesale; there is no partial merge.
type Model struct {
	mu       sync.RWMutex
	logger   *logrus.Logger
	header   Header
	records  map[string]models.RepoSyncRecord
	version  *uint64
	stats    Stats
	summary  Summary
	applied  int
	received bool
}

// NewModel creates an empty projection model
func NewModel(logger *logrus.Logger) *Model {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Model{
		logger:  logger,
		records: make(map[string]models.RepoSyncRecord),
		stats:   ComputeStats(nil, true),
	}
}

// ApplySnapshot replaces the canonical map with s and recomputes derived
// statistics. When both the held and the incoming snapshot carry a version
// and the incoming one is older, it is discarded and false is returned.
func (m *Model) ApplySnapshot(s models.Snapshot) bool {
	records := make(map[string]models.RepoSyncRecord, len(s.Repos))
	for name, rec := range s.Repos {
		rec.Name = name
		rec.Status = rec.Status.Normalize()
		records[name] = rec
	}
	stats := ComputeStats(records, true)
	summary := ComputeSummary(records)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.version != nil && s.Version != nil && *s.Version < *m.version {
		m.logger.WithFields(logrus.Fields{
			"held_version":     *m.version,
			"incoming_version": *s.Version,
		}).Warn("Discarding out-of-order snapshot")
		return false
	}

	m.header = Header{
		SourceEnt:  s.SourceEnt,
		SourceOrg:  s.SourceOrg,
		SourceHost: s.SourceHost,
		TargetEnt:  s.TargetEnt,
		TargetOrg:  s.TargetOrg,
		TargetHost: s.TargetHost,
	}
	m.records = records
	m.version = s.Version
	m.stats = stats
	m.summary = summary
	m.applied++
	m.received = true

	m.logger.WithFields(logrus.Fields{
		"repos":   len(records),
		"visible": stats.Total,
	}).Debug("Applied snapshot")
	return true
}

// Records returns a copy of the canonical map
func (m *Model) Records() map[string]models.RepoSyncRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.RepoSyncRecord, len(m.records))
	for name, rec := range m.records {
		out[name] = rec
	}
	return out
}

// Record returns the record named name
func (m *Model) Record(name string) (models.RepoSyncRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[name]
	return rec, ok
}

// Header returns the source and target of the current snapshot
func (m *Model) Header() Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.header
}

// Stats returns per-status counts excluding deleted records
func (m *Model) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.clone()
}

// ComputeStats returns per-status counts of the current records
func (m *Model) ComputeStats(excludeDeleted bool) Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ComputeStats(m.records, excludeDeleted)
}

// Summary returns the aggregate figures of the current snapshot
func (m *Model) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// Version returns the sequence number of the current snapshot, if any
func (m *Model) Version() *uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.version == nil {
		return nil
	}
	v := *m.version
	return &v
}

// Capture is a consistent read of the figures derived from one snapshot
type Capture struct {
	Header  Header
	Version *uint64
	Stats   Stats
	Summary Summary
}

// Capture returns header, version, stats and summary under a single lock so
// they always describe the same snapshot
func (m *Model) Capture() Capture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := Capture{
		Header:  m.header,
		Stats:   m.stats.clone(),
		Summary: m.summary,
	}
	if m.version != nil {
		v := *m.version
		c.Version = &v
	}
	return c
}

// Applied returns the number of snapshots applied so far
func (m *Model) Applied() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.applied
}

// Received reports whether any snapshot has been applied yet
func (m *Model) Received() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.received
}

// Project runs the filter/sort pipeline over the current records
func (m *Model) Project(q Query, now time.Time) View {
	m.mu.RLock()
	records := m.records
	received := m.received
	m.mu.RUnlock()

	// snapshots replace the map, they never mutate it
	view := Project(records, q, now)
	view.Waiting = !received
	return view
}
