// Package seed populates an empty store with the reference fleet:
// routes, buses, and students. Safe to run on every process start.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/store"
)

// markerID is the meta document recording that all seeding phases
// completed. Checking it instead of mere bus presence means a run that
// died between phases is retried in full rather than half-skipped.
const markerID = "seed"

// Seeder writes the fixture fleet into an empty store.
type Seeder struct {
	store store.Gateway
}

// New returns a Seeder bound to the given store handle.
func New(gw store.Gateway) *Seeder {
	return &Seeder{store: gw}
}

// Initialize seeds routes, buses, and students unless the store already
// holds them. The multi-phase write is not transactional: a failure
// partway through surfaces the underlying error and leaves earlier
// phases in place, but the completion marker is only written after all
// phases succeed, so the next Initialize picks the work back up.
func (s *Seeder) Initialize(ctx context.Context) error {
	done, err := s.alreadySeeded(ctx)
	if err != nil {
		return err
	}
	if done {
		logrus.Info("Reference data already present, skipping seeding")
		return s.EnsureAttendanceCollection(ctx)
	}

	logrus.Info("Seeding store with campus routes, buses, and students")

	routeIDs, err := s.seedRoutes(ctx)
	if err != nil {
		return err
	}
	if err := s.seedBuses(ctx, routeIDs); err != nil {
		return err
	}
	if err := s.seedStudents(ctx, routeIDs); err != nil {
		return err
	}

	marker := store.Fields{
		"completed": true,
		"seededAt":  store.ServerTimestamp,
	}
	if err := s.store.CreateOrReplace(ctx, store.Meta, markerID, marker); err != nil {
		return fmt.Errorf("seed: write completion marker: %w", err)
	}

	logrus.Info("Seeding complete")
	return s.EnsureAttendanceCollection(ctx)
}

// alreadySeeded checks the completion marker first, then falls back to
// bus presence for stores populated by clients that predate the marker.
func (s *Seeder) alreadySeeded(ctx context.Context) (bool, error) {
	fields, err := s.store.ReadByID(ctx, store.Meta, markerID)
	switch {
	case err == nil:
		if completed, ok := fields["completed"].(bool); ok && completed {
			return true, nil
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return false, fmt.Errorf("seed: read completion marker: %w", err)
	}

	buses, err := s.store.ReadAll(ctx, store.Buses)
	if err != nil {
		return false, fmt.Errorf("seed: check existing buses: %w", err)
	}
	if len(buses) == 0 {
		return false, nil
	}

	// Legacy store seeded before markers existed. Record the marker so
	// future runs skip the bus scan.
	marker := store.Fields{"completed": true, "seededAt": store.ServerTimestamp}
	if err := s.store.CreateOrReplace(ctx, store.Meta, markerID, marker); err != nil {
		return false, fmt.Errorf("seed: backfill completion marker: %w", err)
	}
	return true, nil
}

func (s *Seeder) seedRoutes(ctx context.Context) ([]string, error) {
	routes := fixtureRoutes()
	ids := make([]string, 0, len(routes))
	for _, route := range routes {
		fields, err := store.Encode(route)
		if err != nil {
			return nil, fmt.Errorf("seed route %q: %w", route.Name, err)
		}
		id, err := s.store.Create(ctx, store.Routes, fields)
		if err != nil {
			return nil, fmt.Errorf("seed route %q: %w", route.Name, err)
		}
		logrus.WithFields(logrus.Fields{"route": route.Name, "id": id}).Debug("Seeded route")
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Seeder) seedBuses(ctx context.Context, routeIDs []string) error {
	routes := fixtureRoutes()
	for _, fx := range fixtureBuses() {
		bus := models.Bus{
			Name:     fx.name,
			DriverID: fx.driverID,
			RouteID:  routeIDs[fx.routeIndex],
			Capacity: fx.capacity,
			Location: routes[fx.routeIndex].Stops[0].Location,
			Status:   "active",
			ETA:      fx.eta,
		}
		fields, err := store.Encode(bus)
		if err != nil {
			return fmt.Errorf("seed bus %q: %w", fx.name, err)
		}
		fields["lastUpdated"] = store.ServerTimestamp
		id, err := s.store.Create(ctx, store.Buses, fields)
		if err != nil {
			return fmt.Errorf("seed bus %q: %w", fx.name, err)
		}
		logrus.WithFields(logrus.Fields{"bus": fx.name, "id": id}).Debug("Seeded bus")
	}
	return nil
}

func (s *Seeder) seedStudents(ctx context.Context, routeIDs []string) error {
	for _, fx := range fixtureStudents() {
		student := models.Student{
			StudentID:               fx.studentID,
			Name:                    fx.name,
			Email:                   fx.email,
			PreferredPickupLocation: fx.pickup,
			RouteID:                 routeIDs[fx.routeIndex],
		}
		fields, err := store.Encode(student)
		if err != nil {
			return fmt.Errorf("seed student %q: %w", fx.studentID, err)
		}
		id, err := s.store.Create(ctx, store.Students, fields)
		if err != nil {
			return fmt.Errorf("seed student %q: %w", fx.studentID, err)
		}
		logrus.WithFields(logrus.Fields{"student": fx.name, "id": id}).Debug("Seeded student")
	}
	return nil
}

// EnsureAttendanceCollection materializes the attendance collection by
// writing one sentinel record when it reads back empty. The sentinel
// carries models.AttendanceSentinel status and is filtered out of every
// real roster; it is never cleaned up.
func (s *Seeder) EnsureAttendanceCollection(ctx context.Context) error {
	docs, err := s.store.ReadAll(ctx, store.Attendance)
	if err != nil {
		return fmt.Errorf("seed: check attendance collection: %w", err)
	}
	if len(docs) > 0 {
		return nil
	}
	sentinel := store.Fields{
		"studentId":      "test-student",
		"busId":          "test-bus",
		"pickupLocation": "Test Location",
		"status":         models.AttendanceSentinel,
		"timestamp":      store.ServerTimestamp,
		"displayName":    "Test Student",
		"createdAt":      time.Now().Format(time.RFC3339),
	}
	if _, err := s.store.Create(ctx, store.Attendance, sentinel); err != nil {
		return fmt.Errorf("seed: create attendance sentinel: %w", err)
	}
	logrus.Debug("Created attendance sentinel record")
	return nil
}
