package attendance

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/store"
	"shuttle_tracker/internal/store/memstore"
	"shuttle_tracker/internal/tracker"
)

func newService(mem *memstore.Store) *Service {
	return New(mem, tracker.New(mem))
}

func seedStudent(t *testing.T, mem *memstore.Store, student models.Student) {
	t.Helper()
	fields, err := store.Encode(student)
	if err != nil {
		t.Fatalf("encode student: %v", err)
	}
	if _, err := mem.Create(context.Background(), store.Students, fields); err != nil {
		t.Fatalf("seed student: %v", err)
	}
}

func TestConfirmRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	seedStudent(t, mem, models.Student{StudentID: "E23CSE001", Name: "Aarav Sharma"})

	record, err := svc.Confirm(ctx, "E23CSE001", "Main Gate", ConfirmOptions{BusID: "bus1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if record.ID == "" {
		t.Error("expected stored record id on the returned record")
	}
	if record.DisplayName != "Aarav Sharma" {
		t.Errorf("expected resolved student name, got %q", record.DisplayName)
	}

	roster, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected 1 visible record, got %d", len(roster))
	}
	got := roster[0]
	if got.StudentID != "E23CSE001" || got.BusID != "bus1" ||
		got.PickupLocation != "Main Gate" || got.Status != models.AttendanceConfirmed {
		t.Errorf("round-tripped record lost fields: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
	if got.DisplayTime == "" || got.DisplayTime == "Unknown time" {
		t.Errorf("expected display-ready time, got %q", got.DisplayTime)
	}
}

func TestConfirmUsesPlaceholderForUnknownStudent(t *testing.T) {
	svc := newService(memstore.New())

	record, err := svc.Confirm(context.Background(), "ghost-7", "Library", ConfirmOptions{BusID: "bus1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if record.DisplayName != "Student ghost-7" {
		t.Errorf("expected placeholder name, got %q", record.DisplayName)
	}
}

func TestConfirmResolvesCurrentBusWhenUnpinned(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	busID, err := mem.Create(ctx, store.Buses, store.Fields{"name": "Bus Alpha", "status": "active"})
	if err != nil {
		t.Fatalf("seed bus: %v", err)
	}

	record, err := svc.Confirm(ctx, "E23CSE002", "Dorms", ConfirmOptions{})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if record.BusID != busID {
		t.Errorf("expected confirmation pinned to live bus %s, got %q", busID, record.BusID)
	}
}

func TestConfirmRequiresStudentID(t *testing.T) {
	svc := newService(memstore.New())
	if _, err := svc.Confirm(context.Background(), "", "Main Gate", ConfirmOptions{}); err == nil {
		t.Fatal("expected error for missing student id")
	}
}

func TestConfirmPropagatesWriteFailure(t *testing.T) {
	mem := memstore.New()
	mem.SetOffline(true)
	svc := newService(mem)

	_, err := svc.Confirm(context.Background(), "E23CSE001", "Main Gate", ConfirmOptions{BusID: "bus1"})
	if err == nil {
		t.Fatal("expected write failure to propagate")
	}
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable in chain, got %v", err)
	}
}

func TestSnapshotFiltersSentinel(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	if _, err := mem.Create(ctx, store.Attendance, store.Fields{"status": models.AttendanceSentinel}); err != nil {
		t.Fatalf("seed sentinel: %v", err)
	}
	if _, err := svc.Confirm(ctx, "E23CSE001", "Main Gate", ConfirmOptions{BusID: "bus1"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	roster, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected sentinel to be filtered, got %d records", len(roster))
	}
	if roster[0].Status != models.AttendanceConfirmed {
		t.Errorf("unexpected surviving record: %+v", roster[0])
	}
}

func TestSnapshotForBusFilters(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	for _, c := range []struct{ student, bus string }{
		{"E23CSE001", "bus1"}, {"E23CSE002", "bus2"}, {"E23CSE003", "bus1"},
	} {
		if _, err := svc.Confirm(ctx, c.student, "Main Gate", ConfirmOptions{BusID: c.bus}); err != nil {
			t.Fatalf("confirm %s: %v", c.student, err)
		}
	}

	roster, err := svc.SnapshotForBus(ctx, "bus1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 records for bus1, got %d", len(roster))
	}
	for _, record := range roster {
		if record.BusID != "bus1" {
			t.Errorf("record for wrong bus leaked through: %+v", record)
		}
	}
}

func TestSubscribeDeliversRosterOnEachChange(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	feed := svc.Subscribe(ctx)
	defer feed.Cancel()

	roster := nextRoster(t, feed)
	if len(roster) != 0 {
		t.Fatalf("expected initial empty roster, got %d records", len(roster))
	}

	if _, err := svc.Confirm(ctx, "E23CSE001", "Main Gate", ConfirmOptions{BusID: "bus1"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	roster = nextRoster(t, feed)
	if len(roster) != 1 {
		t.Fatalf("expected roster of 1, got %d", len(roster))
	}

	if _, err := svc.Confirm(ctx, "E23CSE002", "Dorms", ConfirmOptions{BusID: "bus1"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	roster = nextRoster(t, feed)
	if len(roster) != 2 {
		t.Fatalf("expected whole current roster (2 records), not a delta, got %d", len(roster))
	}
}

func TestSubscribeForBusEmptyIDShortCircuits(t *testing.T) {
	svc := newService(memstore.New())

	feed := svc.SubscribeForBus(context.Background(), "")
	defer feed.Cancel()

	roster := nextRoster(t, feed)
	if len(roster) != 0 {
		t.Fatalf("expected single empty emission, got %d records", len(roster))
	}
}

func TestSubscribeForBusFilters(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	feed := svc.SubscribeForBus(ctx, "bus1")
	defer feed.Cancel()
	nextRoster(t, feed)

	if _, err := svc.Confirm(ctx, "E23CSE002", "Dorms", ConfirmOptions{BusID: "bus2"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	roster := nextRoster(t, feed)
	if len(roster) != 0 {
		t.Fatalf("expected other bus's record filtered out, got %d records", len(roster))
	}

	if _, err := svc.Confirm(ctx, "E23CSE001", "Main Gate", ConfirmOptions{BusID: "bus1"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	roster = nextRoster(t, feed)
	if len(roster) != 1 || roster[0].BusID != "bus1" {
		t.Fatalf("expected only bus1 records, got %+v", roster)
	}
}

func TestRosterFeedCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newService(mem)

	feed := svc.Subscribe(ctx)
	nextRoster(t, feed)

	feed.Cancel()
	feed.Cancel()

	if _, err := svc.Confirm(ctx, "E23CSE001", "Main Gate", ConfirmOptions{BusID: "bus1"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case _, ok := <-feed.Rosters():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("roster channel did not close after Cancel")
		}
	}
}

func TestGroupByStopPreservesArrivalOrder(t *testing.T) {
	records := []models.AttendanceRecord{
		{StudentID: "s1", PickupLocation: "Main Gate"},
		{StudentID: "s2", PickupLocation: "Dorms"},
		{StudentID: "s3", PickupLocation: "Main Gate"},
		{StudentID: "s4", PickupLocation: "Library"},
	}

	roster := GroupByStop(records)

	wantOrder := []string{"Main Gate", "Dorms", "Library"}
	if !reflect.DeepEqual(roster.Order, wantOrder) {
		t.Errorf("expected first-seen stop order %v, got %v", wantOrder, roster.Order)
	}
	if got := roster.Groups["Main Gate"]; len(got) != 2 || got[0].StudentID != "s1" || got[1].StudentID != "s3" {
		t.Errorf("group lost within-stop order: %+v", got)
	}
	if roster.Count() != len(records) {
		t.Errorf("expected count %d, got %d", len(records), roster.Count())
	}
}

func TestGroupByStopIsDeterministic(t *testing.T) {
	records := []models.AttendanceRecord{
		{StudentID: "s1", PickupLocation: "Dorms"},
		{StudentID: "s2", PickupLocation: "Main Gate"},
		{StudentID: "s3", PickupLocation: "Dorms"},
	}

	first := GroupByStop(records)
	for i := 0; i < 10; i++ {
		again := GroupByStop(records)
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("grouping not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestGroupByStopBucketsEmptyLocation(t *testing.T) {
	records := []models.AttendanceRecord{
		{StudentID: "s1", PickupLocation: ""},
		{StudentID: "s2", PickupLocation: "Main Gate"},
		{StudentID: "s3"},
	}

	roster := GroupByStop(records)
	if got := len(roster.Groups[UnknownLocation]); got != 2 {
		t.Errorf("expected 2 records under %q, got %d", UnknownLocation, got)
	}
	if roster.Order[0] != UnknownLocation {
		t.Errorf("expected %q first by arrival, got %v", UnknownLocation, roster.Order)
	}
}

func nextRoster(t *testing.T, feed *RosterFeed) []models.AttendanceRecord {
	t.Helper()
	select {
	case roster, ok := <-feed.Rosters():
		if !ok {
			t.Fatal("roster channel closed unexpectedly")
		}
		return roster
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for roster")
		return nil
	}
}
