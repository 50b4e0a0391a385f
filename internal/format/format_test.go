package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

var testNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{seconds: 0, expected: "-"},
		{seconds: -4, expected: "-"},
		{seconds: 10, expected: "10s"},
		{seconds: 65, expected: "1m 5s"},
		{seconds: 3600, expected: "1h 0m 0s"},
		{seconds: 3725, expected: "1h 2m 5s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Duration(tt.seconds))
		})
	}
}

func TestMinutesSeconds(t *testing.T) {
	assert.Equal(t, "1m 5s", MinutesSeconds(65))
	assert.Equal(t, "43s", MinutesSeconds(130.0/3))
	assert.Equal(t, "75m 0s", MinutesSeconds(4500))
	assert.Equal(t, "-", MinutesSeconds(0))
}

func TestElapsed(t *testing.T) {
	started := models.NewTimestamp(testNow.Add(-65 * time.Second))

	t.Run("syncing is computed live", func(t *testing.T) {
		rec := models.RepoSyncRecord{Status: models.StatusSyncing, StartedAt: started}
		assert.Equal(t, "1m 5s", Elapsed(rec, testNow))
		assert.Equal(t, "1m 6s", Elapsed(rec, testNow.Add(time.Second)))
	})

	t.Run("failed shows placeholder regardless of startedAt", func(t *testing.T) {
		rec := models.RepoSyncRecord{Status: models.StatusFailed, StartedAt: started}
		assert.Equal(t, "-", Elapsed(rec, testNow))
	})

	t.Run("unsynced shows placeholder regardless of startedAt", func(t *testing.T) {
		rec := models.RepoSyncRecord{Status: models.StatusUnsynced, StartedAt: started}
		assert.Equal(t, "-", Elapsed(rec, testNow))
	})

	t.Run("non-synced terminal records ignore elapsedSeconds", func(t *testing.T) {
		tests := []struct {
			name   string
			status models.RepoStatus
		}{
			{"failed", models.StatusFailed},
			{"unsynced", models.StatusUnsynced},
			{"queued", models.StatusQueued},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := models.RepoSyncRecord{
					Status:         tt.status,
					StartedAt:      started,
					EndedAt:        models.NewTimestamp(testNow.Add(-23 * time.Second)),
					ElapsedSeconds: int64Ptr(42),
				}
				assert.Equal(t, "-", Elapsed(rec, testNow))
				_, ok := ElapsedSeconds(rec, testNow)
				assert.False(t, ok)
			})
		}
	})

	t.Run("synced elapsedSeconds is authoritative", func(t *testing.T) {
		rec := models.RepoSyncRecord{
			Status:         models.StatusSynced,
			StartedAt:      started,
			EndedAt:        models.NewTimestamp(testNow.Add(-time.Second)),
			ElapsedSeconds: int64Ptr(130),
		}
		assert.Equal(t, "2m 10s", Elapsed(rec, testNow))
	})

	t.Run("syncing ignores stale elapsedSeconds", func(t *testing.T) {
		rec := models.RepoSyncRecord{
			Status:         models.StatusSyncing,
			StartedAt:      models.NewTimestamp(testNow.Add(-10 * time.Second)),
			ElapsedSeconds: int64Ptr(500),
		}
		assert.Equal(t, "10s", Elapsed(rec, testNow))
	})

	t.Run("syncing without startedAt", func(t *testing.T) {
		rec := models.RepoSyncRecord{Status: models.StatusSyncing}
		assert.Equal(t, "-", Elapsed(rec, testNow))
	})
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "-", Bytes(0))
	assert.Equal(t, "512 KB", Bytes(512))
	assert.Equal(t, "2.0 MB", Bytes(2048))
	assert.Equal(t, "1.5 GB", Bytes(1024*1024*3/2))
	assert.Equal(t, "2.0 TB", Bytes(2*1024*1024*1024))
}

func TestRelative(t *testing.T) {
	at := func(d time.Duration) *models.Timestamp { return models.NewTimestamp(testNow.Add(-d)) }

	assert.Equal(t, "-", Relative(nil, testNow))
	assert.Equal(t, "just now", Relative(at(30*time.Second), testNow))
	assert.Equal(t, "1 minute ago", Relative(at(time.Minute), testNow))
	assert.Equal(t, "5 minutes ago", Relative(at(5*time.Minute), testNow))
	assert.Equal(t, "1 hour ago", Relative(at(90*time.Minute), testNow))
	assert.Equal(t, "3 days ago", Relative(at(72*time.Hour), testNow))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "-", Timestamp(nil))
	assert.Equal(t, "-", Timestamp(&models.Timestamp{}))
	assert.NotEqual(t, "-", Timestamp(models.NewTimestamp(testNow)))
}
