package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/store"
	"shuttle_tracker/internal/store/memstore"
)

func TestGetCurrentBusFallsBackOnEmptyStore(t *testing.T) {
	sync := New(memstore.New())

	reading := sync.GetCurrentBus(context.Background())
	if reading.Origin != OriginFallback {
		t.Fatalf("expected fallback origin, got %v", reading.Origin)
	}
	if reading.Bus.ID == "" || reading.Bus.Status == "" {
		t.Errorf("mock bus must have id and status, got %+v", reading.Bus)
	}
	if reading.Bus.Location == (models.Coordinate{}) {
		t.Errorf("mock bus must have a location, got %+v", reading.Bus)
	}
}

func TestGetCurrentBusFallsBackOnUnreachableStore(t *testing.T) {
	mem := memstore.New()
	mem.SetOffline(true)
	sync := New(mem)

	reading := sync.GetCurrentBus(context.Background())
	if reading.Origin != OriginFallback {
		t.Fatalf("expected fallback on unreachable store, got %v", reading.Origin)
	}
}

func TestGetCurrentBusReturnsFirstRecord(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	first, err := mem.Create(ctx, store.Buses, store.Fields{"name": "Bus Alpha", "status": "active"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := mem.Create(ctx, store.Buses, store.Fields{"name": "Bus Beta", "status": "active"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	reading := New(mem).GetCurrentBus(ctx)
	if reading.Origin != OriginStore {
		t.Fatalf("expected store origin, got %v", reading.Origin)
	}
	if reading.Bus.ID != first || reading.Bus.Name != "Bus Alpha" {
		t.Errorf("expected first bus record, got %+v", reading.Bus)
	}
}

func TestUpdateLocationRepairsMissingBus(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	sync := New(mem)

	loc := models.Coordinate{Latitude: 28.4669, Longitude: 77.5128}
	if err := sync.UpdateLocation(ctx, "unknown-bus-id", loc); err != nil {
		t.Fatalf("expected absence to be repaired, got error: %v", err)
	}

	docs, err := mem.ReadAll(ctx, store.Buses)
	if err != nil {
		t.Fatalf("read buses: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected exactly one repaired bus record, got %d", len(docs))
	}

	var bus models.Bus
	if err := store.Decode(docs[0], &bus); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bus.ID != "unknown-bus-id" {
		t.Errorf("expected client-known id to be asserted, got %q", bus.ID)
	}
	if bus.Name != "Campus Bus" || bus.Capacity != 20 || bus.Status != "active" {
		t.Errorf("expected defaulted fields, got %+v", bus)
	}
	if bus.Location != loc {
		t.Errorf("expected pushed coordinate, got %+v", bus.Location)
	}
	if bus.LastUpdated.IsZero() {
		t.Error("expected server-assigned lastUpdated")
	}
}

func TestUpdateLocationTouchesOnlyLocationAndLastUpdated(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	sync := New(mem)

	seeded := models.Bus{Name: "Bus Gamma", DriverID: "driver3", Capacity: 22, Status: "active", ETA: "50 min"}
	fields, err := store.Encode(seeded)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := mem.CreateOrReplace(ctx, store.Buses, "bus-g", fields); err != nil {
		t.Fatalf("seed bus: %v", err)
	}

	loc := models.Coordinate{Latitude: 28.49, Longitude: 77.50}
	if err := sync.UpdateLocation(ctx, "bus-g", loc); err != nil {
		t.Fatalf("update: %v", err)
	}

	reading := sync.GetBusByID(ctx, "bus-g")
	if reading.Origin != OriginStore {
		t.Fatalf("expected store origin, got %v", reading.Origin)
	}
	bus := reading.Bus
	if bus.Location != loc {
		t.Errorf("expected new location, got %+v", bus.Location)
	}
	if bus.LastUpdated.IsZero() {
		t.Error("expected lastUpdated to be stamped")
	}
	if bus.Name != seeded.Name || bus.DriverID != seeded.DriverID || bus.Capacity != seeded.Capacity ||
		bus.Status != seeded.Status || bus.ETA != seeded.ETA {
		t.Errorf("fields other than location/lastUpdated changed: %+v", bus)
	}
}

func TestUpdateLocationPropagatesWriteFailure(t *testing.T) {
	mem := memstore.New()
	mem.SetOffline(true)
	sync := New(mem)

	err := sync.UpdateLocation(context.Background(), "bus1", models.Coordinate{Latitude: 1, Longitude: 2})
	if err == nil {
		t.Fatal("expected write failure to propagate")
	}
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable in chain, got %v", err)
	}
}

func TestUpdateLocationRequiresBusID(t *testing.T) {
	sync := New(memstore.New())
	if err := sync.UpdateLocation(context.Background(), "", models.Coordinate{}); err == nil {
		t.Fatal("expected error for empty bus id")
	}
}

func TestSubscribeToBusDerivesCurrentBus(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	sync := New(mem)

	feed := sync.SubscribeToBus(ctx)
	defer feed.Cancel()

	reading := nextReading(t, feed)
	if reading.Origin != OriginFallback {
		t.Fatalf("expected mock bus for empty snapshot, got %+v", reading)
	}

	id, err := mem.Create(ctx, store.Buses, store.Fields{"name": "Bus Alpha", "status": "active"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reading = nextReading(t, feed)
	if reading.Origin != OriginStore || reading.Bus.ID != id {
		t.Fatalf("expected store reading for %s, got %+v", id, reading)
	}
}

func TestSubscribeToBusEmitsMockOnError(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	sync := New(mem)

	feed := sync.SubscribeToBus(ctx)
	defer feed.Cancel()
	nextReading(t, feed)

	mem.SetOffline(true)
	reading := nextReading(t, feed)
	if reading.Origin != OriginFallback {
		t.Fatalf("expected fallback reading on subscription error, got %+v", reading)
	}
}

func TestSubscribeToBusSetupFailureServesMock(t *testing.T) {
	mem := memstore.New()
	mem.SetOffline(true)
	sync := New(mem)

	feed := sync.SubscribeToBus(context.Background())
	defer feed.Cancel()

	reading := nextReading(t, feed)
	if reading.Origin != OriginFallback {
		t.Fatalf("expected mock bus when subscription setup fails, got %+v", reading)
	}
}

func TestBusFeedCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	sync := New(mem)

	feed := sync.SubscribeToBus(ctx)
	nextReading(t, feed)

	feed.Cancel()
	feed.Cancel()

	if _, err := mem.Create(ctx, store.Buses, store.Fields{"name": "late"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case _, ok := <-feed.Readings():
			if !ok {
				return // channel closed, no further delivery
			}
		case <-deadline:
			t.Fatal("feed channel did not close after Cancel")
		}
	}
}

func TestGetRouteFallsBackToMock(t *testing.T) {
	sync := New(memstore.New())
	reading := sync.GetRoute(context.Background(), "missing")
	if reading.Origin != OriginFallback {
		t.Fatalf("expected mock route, got %+v", reading)
	}
	if len(reading.Route.Stops) == 0 || len(reading.Route.Coordinates) == 0 {
		t.Errorf("mock route must be renderable, got %+v", reading.Route)
	}
}

func TestGetRouteByID(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	route := models.Route{Name: "Route A", EstimatedDuration: 45}
	fields, err := store.Encode(route)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := mem.CreateOrReplace(ctx, store.Routes, "route-a", fields); err != nil {
		t.Fatalf("seed route: %v", err)
	}

	reading := New(mem).GetRoute(ctx, "route-a")
	if reading.Origin != OriginStore || reading.Route.Name != "Route A" {
		t.Fatalf("expected seeded route, got %+v", reading)
	}
}

func nextReading(t *testing.T, feed *BusFeed) BusReading {
	t.Helper()
	select {
	case reading, ok := <-feed.Readings():
		if !ok {
			t.Fatal("feed channel closed unexpectedly")
		}
		return reading
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bus reading")
		return BusReading{}
	}
}
