package projection

import (
	"sort"
	"strings"
	"time"

	"github.com/Kamar-Folarin/migration-monitor/internal/format"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// SortColumn names a sortable column of the projection
type SortColumn string

const (
	SortName        SortColumn = "name"
	SortStatus      SortColumn = "status"
	SortLastUpdate  SortColumn = "lastUpdate"
	SortLastChecked SortColumn = "lastChecked"
	SortStartedAt   SortColumn = "startedAt"
	SortLastPushed  SortColumn = "lastPushed"
	SortDuration    SortColumn = "duration"
	SortSize        SortColumn = "size"
)

// SortColumns lists every supported column
var SortColumns = []SortColumn{
	SortName, SortStatus, SortLastUpdate, SortLastChecked,
	SortStartedAt, SortLastPushed, SortDuration, SortSize,
}

// ParseSortColumn validates a user supplied column name
func ParseSortColumn(value string) (SortColumn, bool) {
	for _, col := range SortColumns {
		if strings.EqualFold(string(col), value) {
			return col, true
		}
	}
	return "", false
}

// Direction is the sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// StatusSet is an OR-set of statuses. An empty set matches every status.
type StatusSet map[models.RepoStatus]struct{}

// NewStatusSet creates a set holding statuses
func NewStatusSet(statuses ...models.RepoStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether status is a member
func (s StatusSet) Has(status models.RepoStatus) bool {
	_, ok := s[status]
	return ok
}

// Query is the explicit filter and sort state of the projection
type Query struct {
	Statuses  StatusSet
	Name      string
	Sort      SortColumn
	Direction Direction
}

// DefaultQuery sorts by name ascending with no filters
func DefaultQuery() Query {
	return Query{Sort: SortName, Direction: Ascending}
}

// Toggle returns q sorted by col; re-selecting the current column flips
// the direction, a new column starts ascending
func (q Query) Toggle(col SortColumn) Query {
	if q.Sort == col {
		if q.Direction == Descending {
			q.Direction = Ascending
		} else {
			q.Direction = Descending
		}
		return q
	}
	q.Sort = col
	q.Direction = Ascending
	return q
}

// ToggleStatus returns q with status added to or removed from the filter
func (q Query) ToggleStatus(status models.RepoStatus) Query {
	next := make(StatusSet, len(q.Statuses)+1)
	for s := range q.Statuses {
		next[s] = struct{}{}
	}
	if next.Has(status) {
		delete(next, status)
	} else {
		next[status] = struct{}{}
	}
	q.Statuses = next
	return q
}

// Row is one display-ready line of the projection
type Row struct {
	Name           string            `json:"name"`
	Status         models.RepoStatus `json:"status"`
	Elapsed        string            `json:"elapsed"`
	ElapsedSeconds int64             `json:"elapsedSeconds"`
	Size           string            `json:"size"`
	LastUpdate     string            `json:"lastUpdate"`
	LastChecked    string            `json:"lastChecked"`
	StartedAt      string            `json:"startedAt"`
	LastPushed     string            `json:"lastPushed"`
	// Title carries the error message of failed rows
	Title       string `json:"title,omitempty"`
	MigrationID string `json:"migrationId,omitempty"`
	LogsCached  bool   `json:"logsCached"`
	Visibility  string `json:"visibility,omitempty"`
	Live        bool   `json:"live"`

	Record models.RepoSyncRecord `json:"-"`
}

// View is the ordered, displayable projection
type View struct {
	Rows []Row `json:"rows"`
	// Waiting is set until the first snapshot arrives
	Waiting bool `json:"waiting"`
	// Empty is set when there are no displayable records at all
	Empty bool `json:"empty"`
	// NoResults is set when filters removed every displayable record
	NoResults bool `json:"noResults"`
}

// Project filters and sorts records keyed by repository name. Deleted
// records are dropped before any filter; ties keep name order.
func Project(records map[string]models.RepoSyncRecord, q Query, now time.Time) View {
	visible := make([]models.RepoSyncRecord, 0, len(records))
	for name, rec := range records {
		if rec.IsDeleted() {
			continue
		}
		rec.Name = name
		visible = append(visible, rec)
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })

	if len(visible) == 0 {
		return View{Rows: []Row{}, Empty: true}
	}

	filtered := make([]models.RepoSyncRecord, 0, len(visible))
	needle := strings.ToLower(q.Name)
	for _, rec := range visible {
		if !matchStatus(rec, q.Statuses) || !matchName(rec, needle) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sortRecords(filtered, q, now)

	rows := make([]Row, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, toRow(rec, now))
	}
	return View{Rows: rows, NoResults: len(rows) == 0}
}

func matchStatus(rec models.RepoSyncRecord, statuses StatusSet) bool {
	if len(statuses) == 0 {
		return true
	}
	return statuses.Has(rec.Status)
}

func matchName(rec models.RepoSyncRecord, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(rec.Name), needle)
}

func sortRecords(records []models.RepoSyncRecord, q Query, now time.Time) {
	less := comparator(q.Sort, now)
	if less == nil {
		return
	}
	if q.Direction == Descending {
		sort.SliceStable(records, func(i, j int) bool { return less(records[j], records[i]) })
		return
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

func comparator(col SortColumn, now time.Time) func(a, b models.RepoSyncRecord) bool {
	byInt := func(key func(models.RepoSyncRecord) int64) func(a, b models.RepoSyncRecord) bool {
		return func(a, b models.RepoSyncRecord) bool { return key(a) < key(b) }
	}

	switch col {
	case SortName:
		return func(a, b models.RepoSyncRecord) bool { return a.Name < b.Name }
	case SortStatus:
		return func(a, b models.RepoSyncRecord) bool { return a.Status < b.Status }
	case SortLastUpdate:
		return byInt(func(r models.RepoSyncRecord) int64 { return r.LastUpdate.Millis() })
	case SortLastChecked:
		return byInt(func(r models.RepoSyncRecord) int64 { return r.LastChecked.Millis() })
	case SortStartedAt:
		return byInt(func(r models.RepoSyncRecord) int64 { return r.StartedAt.Millis() })
	case SortLastPushed:
		return byInt(func(r models.RepoSyncRecord) int64 { return r.LastPushed.Millis() })
	case SortDuration:
		return byInt(func(r models.RepoSyncRecord) int64 { return DurationKey(r, now) })
	case SortSize:
		return byInt(func(r models.RepoSyncRecord) int64 { return r.SizeKB() })
	default:
		return nil
	}
}

// DurationKey is the duration sort key: elapsedSeconds when defined, the
// live duration when startedAt is known, 0 otherwise
func DurationKey(rec models.RepoSyncRecord, now time.Time) int64 {
	if rec.ElapsedSeconds != nil {
		return *rec.ElapsedSeconds
	}
	return LiveSeconds(rec, now)
}

// LiveSeconds is the locally derived duration now - startedAt. It is never
// written back into the record.
func LiveSeconds(rec models.RepoSyncRecord, now time.Time) int64 {
	if !rec.StartedAt.Valid() {
		return 0
	}
	seconds := int64(now.Sub(rec.StartedAt.Time) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

func toRow(rec models.RepoSyncRecord, now time.Time) Row {
	elapsed, _ := format.ElapsedSeconds(rec, now)
	row := Row{
		Name:           rec.Name,
		Status:         rec.Status,
		Elapsed:        format.Elapsed(rec, now),
		ElapsedSeconds: elapsed,
		Size:           format.Bytes(rec.SizeKB()),
		LastUpdate:     format.Relative(rec.LastUpdate, now),
		LastChecked:    format.Relative(rec.LastChecked, now),
		StartedAt:      format.Timestamp(rec.StartedAt),
		LastPushed:     format.Relative(rec.LastPushed, now),
		LogsCached:     rec.LogsCached(),
		Visibility:     rec.Visibility,
		Live:           rec.InFlight(),
		Record:         rec,
	}
	if rec.Status == models.StatusFailed {
		row.Title = rec.Error()
	}
	if rec.MigrationID != nil {
		row.MigrationID = *rec.MigrationID
	}
	return row
}
