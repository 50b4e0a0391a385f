package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Set holds one tracker per worker kind
type Set struct {
	trackers map[Kind]*Tracker
}

// NewSet creates the status, migration and progress trackers
func NewSet(transport Transport, interval time.Duration, logger *logrus.Logger) *Set {
	trackers := make(map[Kind]*Tracker, len(Kinds))
	for _, kind := range Kinds {
		trackers[kind] = NewTracker(EndpointsFor(kind), transport, interval, logger)
	}
	return &Set{trackers: trackers}
}

// Get returns the tracker of kind
func (s *Set) Get(kind Kind) (*Tracker, error) {
	tracker, ok := s.trackers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown worker %q", kind)
	}
	return tracker, nil
}

// Subscribe registers fn on every tracker
func (s *Set) Subscribe(fn func(Snapshot)) {
	for _, tracker := range s.trackers {
		tracker.Subscribe(fn)
	}
}

// Snapshots returns the state of every tracker in display order
func (s *Set) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(Kinds))
	for _, kind := range Kinds {
		out = append(out, s.trackers[kind].Snapshot())
	}
	return out
}

// PollAll polls every tracker once, concurrently. The trackers are
// independent: one failure does not cancel the others.
func (s *Set) PollAll(ctx context.Context) error {
	var g errgroup.Group
	for _, kind := range Kinds {
		tracker := s.trackers[kind]
		g.Go(func() error {
			return tracker.Poll(ctx)
		})
	}
	return g.Wait()
}

// Run runs every tracker's poll loop until ctx is done
func (s *Set) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range Kinds {
		tracker := s.trackers[kind]
		g.Go(func() error {
			return tracker.Run(ctx)
		})
	}
	return g.Wait()
}
