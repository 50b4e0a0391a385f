package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Entry is one journaled snapshot
type Entry struct {
	ID                   int64                     `json:"id"`
	RecordedAt           time.Time                 `json:"recordedAt"`
	SourceOrg            string                    `json:"sourceOrg"`
	TargetOrg            string                    `json:"targetOrg"`
	Version              *uint64                   `json:"version,omitempty"`
	Total                int                       `json:"total"`
	Counts               map[models.RepoStatus]int `json:"counts"`
	TotalSizeKB          int64                     `json:"totalSizeKb"`
	TotalDurationSeconds int64                     `json:"totalDurationSeconds"`
}

// NewEntry builds a journal entry from the state of an applied snapshot
func NewEntry(header projection.Header, version *uint64, stats projection.Stats, summary projection.Summary, at time.Time) Entry {
	counts := make(map[models.RepoStatus]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		if n > 0 {
			counts[status] = n
		}
	}
	return Entry{
		RecordedAt:           at.UTC(),
		SourceOrg:            header.SourceOrg,
		TargetOrg:            header.TargetOrg,
		Version:              version,
		Total:                stats.Total,
		Counts:               counts,
		TotalSizeKB:          summary.TotalSizeKB,
		TotalDurationSeconds: summary.TotalDurationSeconds,
	}
}

// Store defines the interface for journal operations
type Store interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// PostgresStore journals snapshots into Postgres
type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Open connects to the database at connectionString
func Open(connectionString string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStore(db, logger), nil
}

// NewPostgresStore wraps an open database handle
func NewPostgresStore(db *sql.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Migrate applies the embedded schema migrations
func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Record inserts entry
func (s *PostgresStore) Record(ctx context.Context, entry Entry) error {
	counts, err := json.Marshal(entry.Counts)
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}

	var version sql.NullInt64
	if entry.Version != nil {
		version = sql.NullInt64{Int64: int64(*entry.Version), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot_stats (recorded_at, source_org, target_org, snapshot_version, total, counts, total_size_kb, total_duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.RecordedAt,
		entry.SourceOrg,
		entry.TargetOrg,
		version,
		entry.Total,
		counts,
		entry.TotalSizeKB,
		entry.TotalDurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to record snapshot stats: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"total":       entry.Total,
		"recorded_at": entry.RecordedAt,
	}).Debug("Recorded snapshot stats")
	return nil
}

// Recent returns the latest limit entries, newest first
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_at, source_org, target_org, snapshot_version, total, counts, total_size_kb, total_duration_seconds
		FROM snapshot_stats
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot stats: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			version sql.NullInt64
			counts  []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.RecordedAt,
			&entry.SourceOrg,
			&entry.TargetOrg,
			&version,
			&entry.Total,
			&counts,
			&entry.TotalSizeKB,
			&entry.TotalDurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot stats: %w", err)
		}
		if version.Valid {
			v := uint64(version.Int64)
			entry.Version = &v
		}
		if err := json.Unmarshal(counts, &entry.Counts); err != nil {
			return nil, fmt.Errorf("failed to decode counts: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Close closes the database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
