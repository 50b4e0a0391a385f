package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// Kind names one of the server's background workers
type Kind string

const (
	KindStatus    Kind = "status"
	KindMigration Kind = "migration"
	KindProgress  Kind = "progress"
)

// Kinds lists the workers in display order
var Kinds = []Kind{KindStatus, KindMigration, KindProgress}

// ParseKind validates a user supplied worker name
func ParseKind(value string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == value {
			return k, true
		}
	}
	return "", false
}

// Endpoints is the poll/start/stop triple of one worker
type Endpoints struct {
	Name  Kind
	Poll  string
	Start string
	Stop  string
}

// EndpointsFor returns the endpoints of kind under /api/{kind}-worker
func EndpointsFor(kind Kind) Endpoints {
	base := fmt.Sprintf("/api/%s-worker", kind)
	return Endpoints{
		Name:  kind,
		Poll:  base,
		Start: base + "/start",
		Stop:  base + "/stop",
	}
}

// Transport performs the worker HTTP calls
type Transport interface {
	GetWorkerStatus(ctx context.Context, path string) (*models.WorkerStatus, error)
	PostWorkerAction(ctx context.Context, path string) error
}

// ErrBusy is returned when a start or stop is requested while another one
// is still in flight
var ErrBusy = apperrors.NewValidationError("worker toggle already in progress", nil)

// Snapshot is a copy of a tracker's state
type Snapshot struct {
	Name       Kind                 `json:"name"`
	Status     *models.WorkerStatus `json:"status,omitempty"`
	Busy       bool                 `json:"busy"`
	LastError  string               `json:"lastError,omitempty"`
	LastPolled time.Time            `json:"lastPolled"`
}

// Tracker mirrors the status of one worker and mediates start/stop
type Tracker struct {
	endpoints Endpoints
	transport Transport
	interval  time.Duration
	logger    *logrus.Logger
	now       func() time.Time

	mu         sync.RWMutex
	status     *models.WorkerStatus
	busy       bool
	lastError  string
	lastPolled time.Time
	onChange   func(Snapshot)
}

// NewTracker creates a tracker polling endpoints every interval
func NewTracker(endpoints Endpoints, transport Transport, interval time.Duration, logger *logrus.Logger) *Tracker {
	return &Tracker{
		endpoints: endpoints,
		transport: transport,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Name returns the worker kind of the tracker
func (t *Tracker) Name() Kind {
	return t.endpoints.Name
}

// Subscribe registers fn to be called after every state change
func (t *Tracker) Subscribe(fn func(Snapshot)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{
		Name:       t.endpoints.Name,
		Busy:       t.busy,
		LastError:  t.lastError,
		LastPolled: t.lastPolled,
	}
	if t.status != nil {
		status := *t.status
		snap.Status = &status
	}
	return snap
}

// notify must be called without the lock held
func (t *Tracker) notify() {
	t.mu.RLock()
	fn := t.onChange
	snap := t.snapshotLocked()
	t.mu.RUnlock()
	if fn != nil {
		fn(snap)
	}
}

// Poll fetches the worker status and replaces the held one wholesale
func (t *Tracker) Poll(ctx context.Context) error {
	status, err := t.transport.GetWorkerStatus(ctx, t.endpoints.Poll)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		t.mu.Lock()
		t.lastError = apperrors.UserMessage(err)
		t.mu.Unlock()
		t.logger.WithFields(logrus.Fields{
			"worker": t.endpoints.Name,
			"error":  err,
		}).Warn("Failed to poll worker status")
		t.notify()
		return err
	}

	t.mu.Lock()
	t.status = status
	t.lastError = ""
	t.lastPolled = t.now()
	t.mu.Unlock()

	t.notify()
	return nil
}

// Start asks the worker to start
func (t *Tracker) Start(ctx context.Context) error {
	return t.act(ctx, t.endpoints.Start, "start")
}

// Stop asks the worker to stop
func (t *Tracker) Stop(ctx context.Context) error {
	return t.act(ctx, t.endpoints.Stop, "stop")
}

// Toggle stops a running worker and starts a stopped one
func (t *Tracker) Toggle(ctx context.Context) error {
	t.mu.RLock()
	running := t.status != nil && t.status.Running
	t.mu.RUnlock()

	if running {
		return t.Stop(ctx)
	}
	return t.Start(ctx)
}

func (t *Tracker) act(ctx context.Context, path, action string) error {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		return ErrBusy
	}
	t.busy = true
	t.mu.Unlock()
	t.notify()

	logger := t.logger.WithFields(logrus.Fields{
		"worker": t.endpoints.Name,
		"action": action,
	})

	err := t.transport.PostWorkerAction(ctx, path)

	t.mu.Lock()
	t.busy = false
	if err != nil {
		t.lastError = apperrors.UserMessage(err)
	}
	t.mu.Unlock()

	if err != nil {
		logger.WithError(err).Error("Worker action failed")
		t.notify()
		return fmt.Errorf("failed to %s %s worker: %w", action, t.endpoints.Name, err)
	}

	logger.Info("Worker action accepted")
	if pollErr := t.Poll(ctx); pollErr != nil {
		logger.WithError(pollErr).Debug("Re-poll after worker action failed")
	}
	return nil
}

// Run polls immediately and then every interval until ctx is done. Poll
// failures are logged and never end the loop.
func (t *Tracker) Run(ctx context.Context) error {
	_ = t.Poll(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = t.Poll(ctx)
		}
	}
}
