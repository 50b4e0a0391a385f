package history

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	dsn := os.Getenv("MIGMON_TEST_DB")
	if dsn == "" {
		t.Skip("MIGMON_TEST_DB not set")
	}

	store, err := Open(dsn, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Migrate())

	cleanup := func() {
		_, err := store.db.Exec(`DELETE FROM snapshot_stats`)
		require.NoError(t, err)
		store.Close()
	}

	return store, cleanup
}

func TestNewEntry(t *testing.T) {
	version := uint64(12)
	at := time.Date(2024, 3, 20, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	stats := projection.Stats{
		Total: 3,
		ByStatus: map[models.RepoStatus]int{
			models.StatusSynced:  2,
			models.StatusFailed:  1,
			models.StatusSyncing: 0,
		},
	}
	summary := projection.Summary{TotalSizeKB: 2048, TotalDurationSeconds: 130}

	entry := NewEntry(projection.Header{SourceOrg: "acme", TargetOrg: "acme-cloud"}, &version, stats, summary, at)

	assert.Equal(t, at.UTC(), entry.RecordedAt)
	assert.Equal(t, "acme", entry.SourceOrg)
	assert.Equal(t, 3, entry.Total)
	assert.Equal(t, map[models.RepoStatus]int{models.StatusSynced: 2, models.StatusFailed: 1}, entry.Counts)
	assert.Equal(t, int64(2048), entry.TotalSizeKB)
	assert.Equal(t, int64(130), entry.TotalDurationSeconds)
	assert.Equal(t, &version, entry.Version)
}

func TestPostgresStore_RecordAndRecent(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := store.Record(ctx, Entry{
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
			SourceOrg:  "acme",
			TargetOrg:  "acme-cloud",
			Total:      10 + i,
			Counts:     map[models.RepoStatus]int{models.StatusSynced: 10 + i},
		})
		require.NoError(t, err)
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 12, entries[0].Total)
	assert.Equal(t, 11, entries[1].Total)
	assert.Equal(t, 12, entries[0].Counts[models.StatusSynced])
	assert.Nil(t, entries[0].Version)
	assert.True(t, entries[0].RecordedAt.Equal(base.Add(2*time.Minute)))
}
