package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Kamar-Folarin/migration-monitor/internal/config"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/history"
	"github.com/Kamar-Folarin/migration-monitor/internal/live"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
	"github.com/Kamar-Folarin/migration-monitor/internal/settings"
	"github.com/Kamar-Folarin/migration-monitor/internal/worker"
)

const journalTimeout = 5 * time.Second

// Client is the subset of the server API the session drives
type Client interface {
	worker.Transport
	live.Streamer
	live.Bootstrapper
	settings.Source
	RetryRepo(ctx context.Context, name string) error
	Logs(ctx context.Context, name string) (string, error)
	DownloadLogs(ctx context.Context, name string) (string, error)
}

// Journal records the statistics of applied snapshots
type Journal interface {
	Record(ctx context.Context, entry history.Entry) error
}

// UpdateKind names what changed
type UpdateKind string

const (
	UpdateSnapshot   UpdateKind = "snapshot"
	UpdateTick       UpdateKind = "tick"
	UpdateWorker     UpdateKind = "worker"
	UpdateConnection UpdateKind = "connection"
	UpdateSettings   UpdateKind = "settings"
)

// Update tells a renderer the session state changed
type Update struct {
	Kind UpdateKind
	At   time.Time
}

// Session owns the dashboard state and runs its background loops
type Session struct {
	cfg    *config.SyncConfig
	client Client
	logger *logrus.Logger
	now    func() time.Time

	model     *projection.Model
	workers   *worker.Set
	channel   *live.Channel
	settings  *settings.Model
	selection *settings.Selection
	journal   Journal

	mu    sync.RWMutex
	query projection.Query
	tick  time.Time

	updates chan Update
	running atomic.Bool
}

// Option configures a Session
type Option func(*Session)

// WithJournal records every applied snapshot into j
func WithJournal(j Journal) Option {
	return func(s *Session) {
		s.journal = j
	}
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession wires the projection, trackers, live channel and settings
// engine around client
func NewSession(client Client, cfg *config.SyncConfig, logger *logrus.Logger, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.DefaultSyncConfig()
	}
	s := &Session{
		cfg:     cfg,
		client:  client,
		logger:  logger,
		now:     time.Now,
		model:   projection.NewModel(logger),
		workers: worker.NewSet(client, cfg.WorkerPollInterval, logger),
		query:   projection.DefaultQuery(),
		updates: make(chan Update, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.channel = live.NewChannel(client, s.model, cfg, logger,
		live.WithBootstrap(client),
		live.WithSnapshotHook(s.onSnapshot),
		live.WithStateHook(func(live.State) { s.publish(UpdateConnection) }),
	)
	s.workers.Subscribe(func(worker.Snapshot) { s.publish(UpdateWorker) })

	s.settings = settings.NewModel(client, logger)
	s.selection = settings.NewSelection(s.settings, logger)
	s.settings.Subscribe(func() { s.publish(UpdateSettings) })

	return s
}

// Run runs the live channel, the worker trackers and the display tick until
// ctx is done
func (s *Session) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.channel.Run(ctx)
	})
	g.Go(func() error {
		return s.workers.Run(ctx)
	})
	g.Go(func() error {
		return s.runTicker(ctx)
	})

	s.logger.WithFields(logrus.Fields{
		"tick_interval":   s.cfg.TickInterval,
		"worker_interval": s.cfg.WorkerPollInterval,
	}).Info("Dashboard session started")

	err := g.Wait()
	s.logger.Info("Dashboard session stopped")
	return err
}

func (s *Session) runTicker(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.mu.Lock()
			s.tick = s.now()
			s.mu.Unlock()
			s.publish(UpdateTick)
		}
	}
}

// Updates delivers change notifications. Only the latest pending update is
// kept; a slow reader sees the newest one and re-reads state.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

func (s *Session) publish(kind UpdateKind) {
	update := Update{Kind: kind, At: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case s.updates <- update:
	default:
		select {
		case <-s.updates:
		default:
		}
		s.updates <- update
	}
}

func (s *Session) onSnapshot(applied bool) {
	if !applied {
		return
	}
	s.publish(UpdateSnapshot)

	if s.journal == nil {
		return
	}
	c := s.model.Capture()
	entry := history.NewEntry(c.Header, c.Version, c.Stats, c.Summary, s.now())
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to journal snapshot stats")
	}
}

// Model returns the projection model
func (s *Session) Model() *projection.Model {
	return s.model
}

// Workers returns the worker trackers
func (s *Session) Workers() *worker.Set {
	return s.workers
}

// Connection returns the live channel status
func (s *Session) Connection() live.Status {
	return s.channel.Status()
}

// Settings returns the settings comparison model
func (s *Session) Settings() *settings.Model {
	return s.settings
}

// Selection returns the settings selection
func (s *Session) Selection() *settings.Selection {
	return s.selection
}

// Query returns the current filter and sort state
func (s *Session) Query() projection.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery replaces the filter and sort state
func (s *Session) SetQuery(q projection.Query) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// ToggleSort sorts by col, flipping the direction when already sorted by it
func (s *Session) ToggleSort(col projection.SortColumn) {
	s.mu.Lock()
	s.query = s.query.Toggle(col)
	s.mu.Unlock()
}

// ToggleStatus adds or removes status from the status filter
func (s *Session) ToggleStatus(status models.RepoStatus) {
	s.mu.Lock()
	s.query = s.query.ToggleStatus(status)
	s.mu.Unlock()
}

// Now returns the time of the last tick, or the wall clock before the first
func (s *Session) Now() time.Time {
	s.mu.RLock()
	tick := s.tick
	s.mu.RUnlock()
	if tick.IsZero() {
		return s.now()
	}
	return tick
}

// View projects the current records through the current query
func (s *Session) View() projection.View {
	return s.model.Project(s.Query(), s.Now())
}

// ViewFor projects the current records through q, leaving the session
// query untouched
func (s *Session) ViewFor(q projection.Query) projection.View {
	return s.model.Project(q, s.Now())
}

// Stats returns per-status counts of the current snapshot
func (s *Session) Stats() projection.Stats {
	return s.model.Stats()
}

// Header returns the source and target of the current snapshot
func (s *Session) Header() projection.Header {
	return s.model.Header()
}

// WorkerSnapshots returns the state of every worker tracker
func (s *Session) WorkerSnapshots() []worker.Snapshot {
	return s.workers.Snapshots()
}

// ToggleWorker starts or stops the worker of kind
func (s *Session) ToggleWorker(ctx context.Context, kind worker.Kind) error {
	tracker, err := s.workers.Get(kind)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), err)
	}
	return tracker.Toggle(ctx)
}

// SyncConfigs lists the sync configurations
func (s *Session) SyncConfigs(ctx context.Context) ([]models.SyncConfigSummary, error) {
	return s.settings.SyncConfigs(ctx)
}

// LoadSettings loads the comparison of syncID and returns its report
func (s *Session) LoadSettings(ctx context.Context, syncID models.SyncID) (settings.Report, error) {
	if err := s.settings.Load(ctx, syncID); err != nil {
		return settings.Report{}, err
	}
	report, _ := s.settings.Report()
	return report, nil
}

// Summary returns the rendered aggregate figures
func (s *Session) Summary() projection.SummaryDisplay {
	return s.model.Summary().Display(s.Now())
}

// Refresh fetches the full state once outside the stream. It must not be
// used while Run is active; the live channel owns snapshot application
// then and Refresh returns a validation error.
func (s *Session) Refresh(ctx context.Context) error {
	if s.running.Load() {
		return apperrors.NewValidationError("refresh is not available while the session is running", nil)
	}
	snapshot, err := s.client.GetState(ctx)
	if err != nil {
		return err
	}
	s.onSnapshot(s.model.ApplySnapshot(*snapshot))
	return nil
}

// RetryRepo asks the server to retry name. The status change arrives with
// a later snapshot.
func (s *Session) RetryRepo(ctx context.Context, name string) error {
	if s.model.Received() {
		if _, ok := s.model.Record(name); !ok {
			return apperrors.NewValidationError("unknown repository: "+name, nil)
		}
	}
	return s.client.RetryRepo(ctx, name)
}

// Logs returns the cached migration logs of name
func (s *Session) Logs(ctx context.Context, name string) (string, error) {
	return s.client.Logs(ctx, name)
}

// DownloadLogs has the server fetch the logs of name, then returns them
func (s *Session) DownloadLogs(ctx context.Context, name string) (string, error) {
	return s.client.DownloadLogs(ctx, name)
}
