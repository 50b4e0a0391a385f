package live

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/migration-monitor/internal/config"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
)

type fakeStreamer struct {
	mu      sync.Mutex
	opens   int
	failFor int
	streams chan *io.PipeWriter
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{streams: make(chan *io.PipeWriter, 16)}
}

func (f *fakeStreamer) OpenEvents(ctx context.Context) (io.ReadCloser, error) {
	f.mu.Lock()
	f.opens++
	n := f.opens
	f.mu.Unlock()

	if n <= f.failFor {
		return nil, apperrors.NewTransportError("failed to open event stream", fmt.Errorf("dial %d refused", n))
	}

	pr, pw := io.Pipe()
	go func() {
		<-ctx.Done()
		pw.CloseWithError(ctx.Err())
	}()
	f.streams <- pw
	return pr, nil
}

func (f *fakeStreamer) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *fakeStreamer) next(t *testing.T) *io.PipeWriter {
	t.Helper()
	select {
	case pw := <-f.streams:
		return pw
	case <-time.After(2 * time.Second):
		t.Fatal("stream was not opened")
		return nil
	}
}

type recordingSink struct {
	mu        sync.Mutex
	snapshots []models.Snapshot
}

func (s *recordingSink) ApplySnapshot(snapshot models.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return true
}

func (s *recordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func (s *recordingSink) Last() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[len(s.snapshots)-1]
}

type staticBootstrap struct {
	snapshot *models.Snapshot
	err      error
}

func (b staticBootstrap) GetState(ctx context.Context) (*models.Snapshot, error) {
	return b.snapshot, b.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSyncConfig() *config.SyncConfig {
	cfg := config.DefaultSyncConfig()
	cfg.ReconnectDelay = 10 * time.Millisecond
	return cfg
}

func stateEvent(repo string) string {
	return fmt.Sprintf("event: state\ndata: {\"repos\":{%q:{\"status\":\"synced\"}}}\n\n", repo)
}

func runChannel(t *testing.T, ch *Channel) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	return func() {
		cancelCtx()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("channel did not stop")
		}
	}
}

func TestChannel_DeliversSnapshots(t *testing.T) {
	streamer := newFakeStreamer()
	sink := &recordingSink{}
	var states []State
	var statesMu sync.Mutex
	ch := NewChannel(streamer, sink, testSyncConfig(), testLogger(), WithStateHook(func(s State) {
		statesMu.Lock()
		states = append(states, s)
		statesMu.Unlock()
	}))

	stop := runChannel(t, ch)

	pw := streamer.next(t)
	_, err := io.WriteString(pw, stateEvent("api"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.Last().Repos, "api")
	assert.Equal(t, Connected, ch.State())
	assert.False(t, ch.Status().LastSnapshot.IsZero())

	stop()
	assert.Equal(t, Disconnected, ch.State())

	statesMu.Lock()
	defer statesMu.Unlock()
	assert.Equal(t, []State{Connecting, Connected, Disconnected}, states)
}

func TestChannel_HeartbeatDoesNotDeliver(t *testing.T) {
	streamer := newFakeStreamer()
	sink := &recordingSink{}
	ch := NewChannel(streamer, sink, testSyncConfig(), testLogger())

	stop := runChannel(t, ch)
	defer stop()

	pw := streamer.next(t)
	_, err := io.WriteString(pw, "event: heartbeat\ndata:\n\n")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return !ch.Status().LastHeartbeat.IsZero() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, sink.Len())
}

func TestChannel_MalformedPayloadIsSkipped(t *testing.T) {
	streamer := newFakeStreamer()
	sink := &recordingSink{}
	ch := NewChannel(streamer, sink, testSyncConfig(), testLogger())

	stop := runChannel(t, ch)
	defer stop()

	pw := streamer.next(t)
	_, err := io.WriteString(pw, "event: state\ndata: {\"repos\": [\n\n"+stateEvent("web"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.Last().Repos, "web")
	assert.Equal(t, Connected, ch.State())
}

func TestChannel_ReconnectsAfterStreamEnds(t *testing.T) {
	streamer := newFakeStreamer()
	sink := &recordingSink{}
	ch := NewChannel(streamer, sink, testSyncConfig(), testLogger())

	stop := runChannel(t, ch)
	defer stop()

	first := streamer.next(t)
	_, err := io.WriteString(first, stateEvent("api"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := streamer.next(t)
	_, err = io.WriteString(second, stateEvent("web"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sink.Len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.Last().Repos, "web")
	assert.Equal(t, 1, ch.Status().Reconnects)
}

func TestChannel_ReconnectsAfterOpenFailure(t *testing.T) {
	streamer := newFakeStreamer()
	streamer.failFor = 2
	sink := &recordingSink{}
	ch := NewChannel(streamer, sink, testSyncConfig(), testLogger())

	stop := runChannel(t, ch)
	defer stop()

	pw := streamer.next(t)
	_, err := io.WriteString(pw, stateEvent("api"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, streamer.Opens())
}

func TestChannel_HeartbeatTimeout(t *testing.T) {
	streamer := newFakeStreamer()
	sink := &recordingSink{}
	cfg := testSyncConfig()
	cfg.HeartbeatTimeout = 100 * time.Millisecond
	ch := NewChannel(streamer, sink, cfg, testLogger())

	stop := runChannel(t, ch)
	defer stop()

	streamer.next(t)
	second := streamer.next(t)
	assert.GreaterOrEqual(t, streamer.Opens(), 2)

	_, err := io.WriteString(second, stateEvent("api"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestChannel_Bootstrap(t *testing.T) {
	streamer := newFakeStreamer()
	sink := &recordingSink{}
	initial := &models.Snapshot{Repos: map[string]models.RepoSyncRecord{"boot": {Status: models.StatusQueued}}}
	ch := NewChannel(streamer, sink, testSyncConfig(), testLogger(), WithBootstrap(staticBootstrap{snapshot: initial}))

	stop := runChannel(t, ch)
	defer stop()

	streamer.next(t)
	require.Equal(t, 1, sink.Len())
	assert.Contains(t, sink.Last().Repos, "boot")
}

func TestChannel_DiscardsOutOfOrderSnapshots(t *testing.T) {
	streamer := newFakeStreamer()
	model := projection.NewModel(testLogger())
	var applied []bool
	var mu sync.Mutex
	ch := NewChannel(streamer, model, testSyncConfig(), testLogger(), WithSnapshotHook(func(ok bool) {
		mu.Lock()
		applied = append(applied, ok)
		mu.Unlock()
	}))

	stop := runChannel(t, ch)
	defer stop()

	pw := streamer.next(t)
	_, err := io.WriteString(pw,
		"event: state\ndata: {\"version\":2,\"repos\":{\"new\":{\"status\":\"synced\"}}}\n\n"+
			"event: state\ndata: {\"version\":1,\"repos\":{\"old\":{\"status\":\"failed\"}}}\n\n")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []bool{true, false}, applied)
	mu.Unlock()

	_, ok := model.Record("new")
	assert.True(t, ok)
	_, ok = model.Record("old")
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
}
