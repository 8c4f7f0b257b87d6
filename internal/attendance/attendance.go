// Package attendance records pickup confirmations and serves the live
// roster. Records are append-only: the core never updates or deletes a
// confirmation once written.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/store"
	"shuttle_tracker/internal/timefmt"
	"shuttle_tracker/internal/tracker"
)

// Service aggregates attendance confirmations per bus and stop.
type Service struct {
	store   store.Gateway
	tracker *tracker.Synchronizer
}

// New returns a Service bound to the given store handle and bus
// synchronizer.
func New(gw store.Gateway, sync *tracker.Synchronizer) *Service {
	return &Service{store: gw, tracker: sync}
}

// ConfirmOptions carries the optional parts of a confirmation. BusID
// pins the record to a known bus; when empty the current bus is
// resolved live at write time, which is what the student screen does.
type ConfirmOptions struct {
	StudentName string
	BusID       string
}

// Confirm appends one attendance record for a student at a stop. Name
// resolution is best-effort: an unknown student gets a synthetic
// placeholder and the write still goes through. Write failures are
// returned so the caller can tell the rider, unlike read-path fallbacks.
func (s *Service) Confirm(ctx context.Context, studentID, pickupLocation string, opts ConfirmOptions) (models.AttendanceRecord, error) {
	if studentID == "" {
		return models.AttendanceRecord{}, errors.New("confirm attendance: student id required")
	}

	name := opts.StudentName
	if name == "" {
		name = s.lookupStudentName(ctx, studentID)
	}
	if name == "" {
		name = "Student " + studentID
	}

	busID := opts.BusID
	if busID == "" {
		busID = s.tracker.GetCurrentBus(ctx).Bus.ID
	}

	record := models.AttendanceRecord{
		StudentID:      studentID,
		BusID:          busID,
		PickupLocation: pickupLocation,
		Status:         models.AttendanceConfirmed,
		DisplayName:    name,
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
	fields, err := store.Encode(record)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("confirm attendance: %w", err)
	}
	fields["timestamp"] = store.ServerTimestamp

	id, err := s.store.Create(ctx, store.Attendance, fields)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("confirm attendance: %w", err)
	}
	record.ID = id

	logrus.WithFields(logrus.Fields{
		"student_id": studentID,
		"bus_id":     busID,
		"pickup":     pickupLocation,
		"record_id":  id,
	}).Info("Attendance confirmed")
	return record, nil
}

// lookupStudentName resolves a display name from the students
// collection. Any failure yields "", never an error: name resolution
// must not block the confirmation write.
func (s *Service) lookupStudentName(ctx context.Context, studentID string) string {
	docs, err := s.store.ReadAll(ctx, store.Students)
	if err != nil {
		logrus.WithError(err).WithField("student_id", studentID).Debug("Student name lookup failed")
		return ""
	}
	for _, doc := range docs {
		var student models.Student
		if err := store.Decode(doc, &student); err != nil {
			continue
		}
		if student.StudentID == studentID {
			return student.Name
		}
	}
	return ""
}

// Snapshot returns the current display-ready roster without opening a
// watch. Unlike the subscription path, a transport failure here is an
// error: the caller asked for a point-in-time read, not a feed.
func (s *Service) Snapshot(ctx context.Context) ([]models.AttendanceRecord, error) {
	docs, err := s.store.ReadAll(ctx, store.Attendance)
	if err != nil {
		return nil, fmt.Errorf("attendance snapshot: %w", err)
	}
	return decorateSnapshot(docs), nil
}

// SnapshotForBus returns the current roster for one bus.
func (s *Service) SnapshotForBus(ctx context.Context, busID string) ([]models.AttendanceRecord, error) {
	records, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if record.BusID == busID {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

// RosterFeed is a push subscription delivering the full current
// attendance roster on every change. Cancel stops delivery and
// releases the watch.
type RosterFeed struct {
	rosters chan []models.AttendanceRecord
	cancel  func()
	once    sync.Once
}

// Rosters returns the roster stream. The channel closes after Cancel.
func (f *RosterFeed) Rosters() <-chan []models.AttendanceRecord { return f.rosters }

// Cancel is the disposer. Safe to call more than once.
func (f *RosterFeed) Cancel() {
	f.once.Do(f.cancel)
}

// Subscribe streams the entire attendance collection. Each snapshot is
// decorated with a human-readable DisplayTime and stripped of the
// bootstrap sentinel. A subscription error surfaces as an empty roster,
// matching the bus feed's render-something-over-erroring policy.
func (s *Service) Subscribe(ctx context.Context) *RosterFeed {
	return s.subscribe(ctx, nil)
}

// SubscribeForBus streams only the records bound to one bus. An empty
// bus id short-circuits to a single empty emission without touching the
// store: a store-wide watch would be meaningless for this call pattern.
func (s *Service) SubscribeForBus(ctx context.Context, busID string) *RosterFeed {
	if busID == "" {
		feed := &RosterFeed{rosters: make(chan []models.AttendanceRecord, 1), cancel: func() {}}
		feed.rosters <- []models.AttendanceRecord{}
		return feed
	}
	return s.subscribe(ctx, func(d store.Document) bool {
		id, _ := d.Fields["busId"].(string)
		return id == busID
	})
}

func (s *Service) subscribe(ctx context.Context, match store.Predicate) *RosterFeed {
	sub, err := s.store.Subscribe(ctx, store.Attendance, match)
	if err != nil {
		logrus.WithError(err).Warn("Attendance subscription unavailable, serving empty roster")
		feed := &RosterFeed{rosters: make(chan []models.AttendanceRecord, 1), cancel: func() {}}
		feed.rosters <- []models.AttendanceRecord{}
		return feed
	}

	feed := &RosterFeed{rosters: make(chan []models.AttendanceRecord, 1), cancel: sub.Cancel}
	go func() {
		defer close(feed.rosters)
		for ev := range sub.Events() {
			var roster []models.AttendanceRecord
			if ev.Err != nil {
				logrus.WithError(ev.Err).Warn("Attendance subscription error, serving empty roster")
				roster = []models.AttendanceRecord{}
			} else {
				roster = decorateSnapshot(ev.Docs)
			}
			select {
			case feed.rosters <- roster:
			default:
				select {
				case <-feed.rosters:
				default:
				}
				feed.rosters <- roster
			}
		}
	}()
	return feed
}

// decorateSnapshot maps raw documents to display-ready records in
// snapshot order, dropping sentinel records.
func decorateSnapshot(docs []store.Document) []models.AttendanceRecord {
	roster := make([]models.AttendanceRecord, 0, len(docs))
	for _, doc := range docs {
		var record models.AttendanceRecord
		if err := store.Decode(doc, &record); err != nil {
			logrus.WithError(err).WithField("record_id", doc.ID).Warn("Skipping undecodable attendance record")
			continue
		}
		if record.Status == models.AttendanceSentinel {
			continue
		}
		if v, ok := timefmt.Coerce(doc.Fields["timestamp"]); ok {
			record.DisplayTime = timefmt.Format(v)
		} else {
			record.DisplayTime = timefmt.Format(timefmt.Instant(time.Now()))
		}
		roster = append(roster, record)
	}
	return roster
}
