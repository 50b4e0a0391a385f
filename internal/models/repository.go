package models

// RepoStatus is the migration state of a single repository
type RepoStatus string

const (
	StatusUnknown  RepoStatus = "unknown"
	StatusUnsynced RepoStatus = "unsynced"
	StatusQueued   RepoStatus = "queued"
	StatusSyncing  RepoStatus = "syncing"
	StatusSynced   RepoStatus = "synced"
	StatusFailed   RepoStatus = "failed"
	StatusDeleted  RepoStatus = "deleted"
)

// Statuses lists every known status in display order
var Statuses = []RepoStatus{
	StatusUnknown,
	StatusUnsynced,
	StatusQueued,
	StatusSyncing,
	StatusSynced,
	StatusFailed,
	StatusDeleted,
}

// Normalize maps unrecognised status values to StatusUnknown
func (s RepoStatus) Normalize() RepoStatus {
	for _, known := range Statuses {
		if s == known {
			return s
		}
	}
	return StatusUnknown
}

// ParseStatus converts a user supplied status name
func ParseStatus(value string) (RepoStatus, bool) {
	for _, known := range Statuses {
		if string(known) == value {
			return known, true
		}
	}
	return StatusUnknown, false
}

// Language is one entry of a repository's language breakdown
type Language struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// RepoMetadata holds descriptive repository data collected by the server
type RepoMetadata struct {
	// Size in KB
	Size            *int64     `json:"size,omitempty"`
	Description     *string    `json:"description,omitempty"`
	PrimaryLanguage *string    `json:"primaryLanguage,omitempty"`
	Languages       []Language `json:"languages,omitempty"`
	CommitCount     *int       `json:"commitCount,omitempty"`
	BranchCount     *int       `json:"branchCount,omitempty"`
	Archived        bool       `json:"archived,omitempty"`
}

// RepoLogs describes the server-side log cache of a repository
type RepoLogs struct {
	Cached *bool `json:"cached,omitempty"`
}

// RepoSyncRecord is one row per repository under migration
type RepoSyncRecord struct {
	Name           string        `json:"name"`
	Status         RepoStatus    `json:"status"`
	LastUpdate     *Timestamp    `json:"lastUpdate,omitempty"`
	LastChecked    *Timestamp    `json:"lastChecked,omitempty"`
	StartedAt      *Timestamp    `json:"startedAt,omitempty"`
	EndedAt        *Timestamp    `json:"endedAt,omitempty"`
	LastPushed     *Timestamp    `json:"lastPushed,omitempty"`
	ElapsedSeconds *int64        `json:"elapsedSeconds,omitempty"`
	ErrorMessage   *string       `json:"errorMessage,omitempty"`
	MigrationID    *string       `json:"migrationId,omitempty"`
	Logs           *RepoLogs     `json:"logs,omitempty"`
	Metadata       *RepoMetadata `json:"metadata,omitempty"`
	Visibility     string        `json:"visibility,omitempty"`
}

// IsDeleted reports whether the record is a tombstone
func (r RepoSyncRecord) IsDeleted() bool {
	return r.Status == StatusDeleted
}

// InFlight reports whether the record is syncing and has not ended yet
func (r RepoSyncRecord) InFlight() bool {
	return r.Status == StatusSyncing && r.StartedAt.Valid() && !r.EndedAt.Valid()
}

// SizeKB returns metadata.size, or 0 when absent
func (r RepoSyncRecord) SizeKB() int64 {
	if r.Metadata == nil || r.Metadata.Size == nil {
		return 0
	}
	return *r.Metadata.Size
}

// LogsCached reports whether the server holds cached logs for the record
func (r RepoSyncRecord) LogsCached() bool {
	return r.Logs != nil && r.Logs.Cached != nil && *r.Logs.Cached
}

// Error returns the error message or an empty string
func (r RepoSyncRecord) Error() string {
	if r.ErrorMessage == nil {
		return ""
	}
	return *r.ErrorMessage
}

// Snapshot is a complete, authoritative replacement of all repo-sync records
type Snapshot struct {
	SourceEnt  string                    `json:"sourceEnt,omitempty"`
	SourceOrg  string                    `json:"sourceOrg,omitempty"`
	SourceHost string                    `json:"sourceHost,omitempty"`
	TargetEnt  string                    `json:"targetEnt,omitempty"`
	TargetOrg  string                    `json:"targetOrg,omitempty"`
	TargetHost string                    `json:"targetHost,omitempty"`
	Repos      map[string]RepoSyncRecord `json:"repos"`
	// Version is an optional monotonic sequence number set by the server
	Version *uint64 `json:"version,omitempty"`
}
