// Package tracker is the single source of truth for "where is each bus
// now". Reads degrade to a fixed mock record when the store is empty or
// unreachable so screens always have something to render; writes
// propagate failures to the caller.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/store"
)

// Origin records which branch produced a reading, so consumers and
// tests can tell live store state from the built-in fallback.
type Origin int

const (
	OriginStore Origin = iota
	OriginFallback
)

func (o Origin) String() string {
	if o == OriginFallback {
		return "fallback"
	}
	return "store"
}

// MarshalJSON renders the origin as its string form.
func (o Origin) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// BusReading is a point-in-time view of the current bus.
type BusReading struct {
	Bus    models.Bus `json:"bus"`
	Origin Origin     `json:"origin"`
}

// RouteReading is a point-in-time view of a route.
type RouteReading struct {
	Route  models.Route `json:"route"`
	Origin Origin       `json:"origin"`
}

// Synchronizer publishes and observes live bus state through the store
// gateway handed to it at construction.
type Synchronizer struct {
	store store.Gateway
}

// New returns a Synchronizer bound to the given store handle.
func New(gw store.Gateway) *Synchronizer {
	return &Synchronizer{store: gw}
}

// GetCurrentBus returns the first bus record in the store. An empty or
// unreachable store yields the mock bus, never an error; a healthy
// process always has a renderable bus.
func (s *Synchronizer) GetCurrentBus(ctx context.Context) BusReading {
	docs, err := s.store.ReadAll(ctx, store.Buses)
	if err != nil {
		logrus.WithError(err).Warn("Falling back to mock bus: store read failed")
		return BusReading{Bus: MockBus(), Origin: OriginFallback}
	}
	return s.busFromSnapshot(docs)
}

// GetBusByID returns one bus, degrading to the mock bus when the id is
// empty, unknown, or the store is unreachable.
func (s *Synchronizer) GetBusByID(ctx context.Context, busID string) BusReading {
	if busID == "" {
		return BusReading{Bus: MockBus(), Origin: OriginFallback}
	}
	fields, err := s.store.ReadByID(ctx, store.Buses, busID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logrus.WithError(err).WithField("bus_id", busID).Warn("Falling back to mock bus: store read failed")
		}
		return BusReading{Bus: MockBus(), Origin: OriginFallback}
	}
	var bus models.Bus
	if err := store.Decode(store.Document{ID: busID, Fields: fields}, &bus); err != nil {
		logrus.WithError(err).WithField("bus_id", busID).Warn("Falling back to mock bus: undecodable record")
		return BusReading{Bus: MockBus(), Origin: OriginFallback}
	}
	return BusReading{Bus: bus, Origin: OriginStore}
}

// GetRoute returns the route with the given id, falling back to the
// first route in the store and finally to the mock route.
func (s *Synchronizer) GetRoute(ctx context.Context, routeID string) RouteReading {
	if routeID != "" {
		fields, err := s.store.ReadByID(ctx, store.Routes, routeID)
		if err == nil {
			var route models.Route
			if derr := store.Decode(store.Document{ID: routeID, Fields: fields}, &route); derr == nil {
				return RouteReading{Route: route, Origin: OriginStore}
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			logrus.WithError(err).WithField("route_id", routeID).Warn("Falling back to mock route: store read failed")
			return RouteReading{Route: MockRoute(), Origin: OriginFallback}
		}
	}

	docs, err := s.store.ReadAll(ctx, store.Routes)
	if err != nil || len(docs) == 0 {
		if err != nil {
			logrus.WithError(err).Warn("Falling back to mock route: store read failed")
		}
		return RouteReading{Route: MockRoute(), Origin: OriginFallback}
	}
	var route models.Route
	if err := store.Decode(docs[0], &route); err != nil {
		return RouteReading{Route: MockRoute(), Origin: OriginFallback}
	}
	return RouteReading{Route: route, Origin: OriginStore}
}

// ListBuses returns every bus in the store. Unlike the current-bus read
// this is a plain query: an unreachable store is an error here.
func (s *Synchronizer) ListBuses(ctx context.Context) ([]models.Bus, error) {
	docs, err := s.store.ReadAll(ctx, store.Buses)
	if err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	buses := make([]models.Bus, 0, len(docs))
	for _, doc := range docs {
		var bus models.Bus
		if err := store.Decode(doc, &bus); err != nil {
			logrus.WithError(err).WithField("bus_id", doc.ID).Warn("Skipping undecodable bus record")
			continue
		}
		buses = append(buses, bus)
	}
	return buses, nil
}

// ListRoutes returns every route in the store.
func (s *Synchronizer) ListRoutes(ctx context.Context) ([]models.Route, error) {
	docs, err := s.store.ReadAll(ctx, store.Routes)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	routes := make([]models.Route, 0, len(docs))
	for _, doc := range docs {
		var route models.Route
		if err := store.Decode(doc, &route); err != nil {
			logrus.WithError(err).WithField("route_id", doc.ID).Warn("Skipping undecodable route record")
			continue
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// UpdateLocation records a driver's position for the given bus. A
// missing bus is repaired, not rejected: the record is created under the
// client-known id with defaulted fields. An existing bus has only its
// location and lastUpdated touched, every other field is preserved.
func (s *Synchronizer) UpdateLocation(ctx context.Context, busID string, loc models.Coordinate) error {
	if busID == "" {
		return errors.New("update location: bus id required")
	}

	_, err := s.store.ReadByID(ctx, store.Buses, busID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fields := store.Fields{
			"name":        "Campus Bus",
			"driverId":    "driver1",
			"capacity":    20,
			"status":      "active",
			"location":    coordinateFields(loc),
			"lastUpdated": store.ServerTimestamp,
		}
		if err := s.store.CreateOrReplace(ctx, store.Buses, busID, fields); err != nil {
			return fmt.Errorf("create bus %s: %w", busID, err)
		}
		logrus.WithField("bus_id", busID).Info("Created bus record on first location push")
		return nil
	case err != nil:
		return fmt.Errorf("look up bus %s: %w", busID, err)
	}

	partial := store.Fields{
		"location":    coordinateFields(loc),
		"lastUpdated": store.ServerTimestamp,
	}
	if err := s.store.Update(ctx, store.Buses, busID, partial); err != nil {
		return fmt.Errorf("update bus %s location: %w", busID, err)
	}
	return nil
}

func coordinateFields(loc models.Coordinate) map[string]any {
	return map[string]any{
		"latitude":  loc.Latitude,
		"longitude": loc.Longitude,
	}
}

func (s *Synchronizer) busFromSnapshot(docs []store.Document) BusReading {
	if len(docs) == 0 {
		return BusReading{Bus: MockBus(), Origin: OriginFallback}
	}
	var bus models.Bus
	if err := store.Decode(docs[0], &bus); err != nil {
		logrus.WithError(err).WithField("bus_id", docs[0].ID).Warn("Falling back to mock bus: undecodable record")
		return BusReading{Bus: MockBus(), Origin: OriginFallback}
	}
	return BusReading{Bus: bus, Origin: OriginStore}
}

// BusFeed is a push subscription delivering the current bus on every
// store change. Cancel stops delivery and releases the watch.
type BusFeed struct {
	readings chan BusReading
	cancel   func()
	once     sync.Once
}

// Readings returns the reading stream. The channel closes after Cancel.
func (f *BusFeed) Readings() <-chan BusReading { return f.readings }

// Cancel is the disposer. Safe to call more than once.
func (f *BusFeed) Cancel() {
	f.once.Do(f.cancel)
}

// SubscribeToBus wraps the gateway's collection subscription, deriving
// the current bus from each snapshot with the same first-record rule as
// GetCurrentBus. Snapshot-level and setup-level errors both surface as
// a mock-bus reading instead of an error: the consumer is a screen and
// a renderable bus beats a stack trace.
func (s *Synchronizer) SubscribeToBus(ctx context.Context) *BusFeed {
	sub, err := s.store.Subscribe(ctx, store.Buses, nil)
	if err != nil {
		logrus.WithError(err).Warn("Bus subscription unavailable, serving mock bus")
		feed := &BusFeed{readings: make(chan BusReading, 1), cancel: func() {}}
		feed.readings <- BusReading{Bus: MockBus(), Origin: OriginFallback}
		return feed
	}

	feed := &BusFeed{readings: make(chan BusReading, 1), cancel: sub.Cancel}
	go func() {
		defer close(feed.readings)
		for ev := range sub.Events() {
			var reading BusReading
			if ev.Err != nil {
				logrus.WithError(ev.Err).Warn("Bus subscription error, serving mock bus")
				reading = BusReading{Bus: MockBus(), Origin: OriginFallback}
			} else {
				reading = s.busFromSnapshot(ev.Docs)
			}
			// Latest reading wins; a slow consumer only ever needs the
			// newest position.
			select {
			case feed.readings <- reading:
			default:
				select {
				case <-feed.readings:
				default:
				}
				feed.readings <- reading
			}
		}
	}()
	return feed
}
