// Package driversim replays a bus along its route, standing in for a
// driver's phone pushing GPS fixes. One location write per tick, no
// retry and no backpressure: a failed or slow push is simply superseded
// by the next tick, and the store's last-write-wins ordering settles
// the final state.
package driversim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/tracker"
)

// DefaultInterval matches the driver app's push cadence.
const DefaultInterval = 10 * time.Second

// Simulator drives one bus around its assigned route.
type Simulator struct {
	tracker  *tracker.Synchronizer
	busID    string
	interval time.Duration

	step     atomic.Int64
	stop     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// New returns a Simulator for the given bus. A non-positive interval
// falls back to DefaultInterval.
func New(sync *tracker.Synchronizer, busID string, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{
		tracker:  sync,
		busID:    busID,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the tick loop. Subsequent calls are no-ops.
func (s *Simulator) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"bus_id":   s.busID,
		"interval": s.interval,
	}).Info("Starting driver location simulator")
	go s.run(ctx)
}

// Stop is the disposer: it halts the ticker so no further location
// pushes are issued. A push already in flight may still land. Safe to
// call more than once.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		logrus.WithField("bus_id", s.busID).Info("Stopped driver location simulator")
	})
}

func (s *Simulator) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Ticks are independent: the next fires whether or not the
			// previous push has returned.
			go s.push(ctx)
		}
	}
}

func (s *Simulator) push(ctx context.Context) {
	reading := s.tracker.GetBusByID(ctx, s.busID)
	route := s.tracker.GetRoute(ctx, reading.Bus.RouteID)
	coords := route.Route.Coordinates
	if len(coords) == 0 {
		logrus.WithField("bus_id", s.busID).Debug("No route path to walk, skipping tick")
		return
	}

	idx := int(s.step.Add(1)) % len(coords)
	if err := s.tracker.UpdateLocation(ctx, s.busID, coords[idx]); err != nil {
		logrus.WithError(err).WithField("bus_id", s.busID).Warn("Location push failed, awaiting next tick")
	}
}
