package live

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/migration-monitor/internal/config"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
)

// State is the connection state of the live channel
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	eventState     = "state"
	eventHeartbeat = "heartbeat"
)

var (
	// ErrStreamClosed is returned when the server ends the stream
	ErrStreamClosed = apperrors.NewTransportError("event stream closed by server", nil)
	// ErrHeartbeatTimeout is returned when the stream stays silent too long
	ErrHeartbeatTimeout = apperrors.NewTransportError("event stream heartbeat timed out", nil)
)

// Streamer opens the server's event stream
type Streamer interface {
	OpenEvents(ctx context.Context) (io.ReadCloser, error)
}

// Bootstrapper fetches a full snapshot outside the stream
type Bootstrapper interface {
	GetState(ctx context.Context) (*models.Snapshot, error)
}

// SnapshotSink receives every decoded snapshot verbatim
type SnapshotSink interface {
	ApplySnapshot(s models.Snapshot) bool
}

// Status is a copy of the channel's observable state
type Status struct {
	State         State     `json:"-"`
	StateName     string    `json:"state"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
	LastSnapshot  time.Time `json:"lastSnapshot"`
	Reconnects    int       `json:"reconnects"`
}

// Channel keeps the projection in sync with the server's event stream
type Channel struct {
	streamer  Streamer
	bootstrap Bootstrapper
	sink      SnapshotSink
	cfg       *config.SyncConfig
	logger    *logrus.Logger
	now       func() time.Time

	mu            sync.RWMutex
	state         State
	body          io.ReadCloser
	lastHeartbeat time.Time
	lastSnapshot  time.Time
	reconnects    int
	onState       func(State)
	onSnapshot    func(applied bool)
}

// Option configures a Channel
type Option func(*Channel)

// WithBootstrap fetches a full snapshot through b before the first connect
func WithBootstrap(b Bootstrapper) Option {
	return func(c *Channel) {
		c.bootstrap = b
	}
}

// WithStateHook registers fn to be called on every state transition
func WithStateHook(fn func(State)) Option {
	return func(c *Channel) {
		c.onState = fn
	}
}

// WithSnapshotHook registers fn to be called after every delivered snapshot
func WithSnapshotHook(fn func(applied bool)) Option {
	return func(c *Channel) {
		c.onSnapshot = fn
	}
}

// NewChannel creates a new live update channel
func NewChannel(streamer Streamer, sink SnapshotSink, cfg *config.SyncConfig, logger *logrus.Logger, opts ...Option) *Channel {
	if cfg == nil {
		cfg = config.DefaultSyncConfig()
	}
	c := &Channel{
		streamer: streamer,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns a copy of the channel state
func (c *Channel) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		State:         c.state,
		StateName:     c.state.String(),
		LastHeartbeat: c.lastHeartbeat,
		LastSnapshot:  c.lastSnapshot,
		Reconnects:    c.reconnects,
	}
}

// State returns the current connection state
func (c *Channel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	fn := c.onState
	c.mu.Unlock()

	if changed && fn != nil {
		fn(s)
	}
}

// swapBody installs body as the live connection and closes the previous one
func (c *Channel) swapBody(body io.ReadCloser) {
	c.mu.Lock()
	prev := c.body
	c.body = body
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// Run keeps the stream open until ctx is done. Every failure is logged and
// followed by a reconnect after the configured delay; there is no backoff
// and no retry cap.
func (c *Channel) Run(ctx context.Context) error {
	defer func() {
		c.swapBody(nil)
		c.setState(Disconnected)
	}()

	if c.bootstrap != nil {
		c.fetchInitial(ctx)
	}

	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return nil
		}

		c.setState(Disconnected)
		c.logger.WithFields(logrus.Fields{
			"error":           err,
			"reconnect_delay": c.cfg.ReconnectDelay,
		}).Warn("Event stream disconnected, reconnecting")

		timer := time.NewTimer(c.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		c.mu.Lock()
		c.reconnects++
		c.mu.Unlock()
	}
}

func (c *Channel) fetchInitial(ctx context.Context) {
	snapshot, err := c.bootstrap.GetState(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to fetch initial state")
		return
	}
	c.deliver(*snapshot)
}

// connect runs one connection until it fails or ctx is done
func (c *Channel) connect(ctx context.Context) error {
	c.setState(Connecting)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	body, err := c.streamer.OpenEvents(connCtx)
	if err != nil {
		return err
	}
	c.swapBody(body)
	defer c.swapBody(nil)

	c.setState(Connected)
	c.logger.Info("Event stream connected")

	var timedOut atomic.Bool
	var watchdog *time.Timer
	if c.cfg.HeartbeatTimeout > 0 {
		watchdog = time.AfterFunc(c.cfg.HeartbeatTimeout, func() {
			timedOut.Store(true)
			cancel()
			body.Close()
		})
		defer watchdog.Stop()
	}

	err = ReadEvents(body, func(ev Event) {
		if watchdog != nil {
			watchdog.Reset(c.cfg.HeartbeatTimeout)
		}
		c.handle(ev)
	})

	switch {
	case timedOut.Load():
		return ErrHeartbeatTimeout
	case err != nil:
		return apperrors.NewTransportError("event stream failed", err)
	default:
		return ErrStreamClosed
	}
}

func (c *Channel) handle(ev Event) {
	switch ev.Name {
	case eventState:
		var snapshot models.Snapshot
		if err := json.Unmarshal([]byte(ev.Data), &snapshot); err != nil {
			c.logger.WithError(err).Warn("Discarding malformed state event")
			return
		}
		c.deliver(snapshot)
	case eventHeartbeat:
		c.mu.Lock()
		c.lastHeartbeat = c.now()
		c.mu.Unlock()
	default:
		c.logger.WithField("event", ev.Name).Debug("Ignoring unknown event")
	}
}

func (c *Channel) deliver(snapshot models.Snapshot) {
	applied := c.sink.ApplySnapshot(snapshot)

	c.mu.Lock()
	c.lastSnapshot = c.now()
	fn := c.onSnapshot
	c.mu.Unlock()

	if fn != nil {
		fn(applied)
	}
}

// IsTimeout reports whether err ended a connection through the heartbeat
// watchdog
func IsTimeout(err error) bool {
	return stderrors.Is(err, ErrHeartbeatTimeout)
}
