package tracker

import (
	"testing"

	"shuttle_tracker/internal/models"
)

func TestPathLineString(t *testing.T) {
	route := models.Route{Coordinates: []models.Coordinate{
		{Latitude: 28.4506, Longitude: 77.5842},
		{Latitude: 28.4601, Longitude: 77.4963},
	}}

	ls := PathLineString(route)
	coords := ls.Coords()
	if len(coords) != 2 {
		t.Fatalf("expected 2 vertices, got %d", len(coords))
	}
	// lng/lat axis order
	if coords[0][0] != 77.5842 || coords[0][1] != 28.4506 {
		t.Errorf("expected lng/lat ordering, got %v", coords[0])
	}
}

func TestEstimateETA(t *testing.T) {
	route := models.Route{
		EstimatedDuration: 30,
		Coordinates: []models.Coordinate{
			{Latitude: 28.40, Longitude: 77.50},
			{Latitude: 28.45, Longitude: 77.50},
			{Latitude: 28.50, Longitude: 77.50},
		},
	}

	tests := []struct {
		name string
		loc  models.Coordinate
		want string
	}{
		{name: "at start", loc: models.Coordinate{Latitude: 28.40, Longitude: 77.50}, want: "30 min"},
		{name: "at midpoint", loc: models.Coordinate{Latitude: 28.45, Longitude: 77.50}, want: "15 min"},
		{name: "at terminus", loc: models.Coordinate{Latitude: 28.50, Longitude: 77.50}, want: "1 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateETA(route, tt.loc); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEstimateETAWithoutUsablePath(t *testing.T) {
	route := models.Route{EstimatedDuration: 45, Coordinates: []models.Coordinate{{Latitude: 28.4, Longitude: 77.5}}}
	if got := EstimateETA(route, models.Coordinate{}); got != "45 min" {
		t.Errorf("expected scheduled duration fallback, got %q", got)
	}
}

func TestEstimateETAWithoutDuration(t *testing.T) {
	if got := EstimateETA(models.Route{}, models.Coordinate{}); got != "" {
		t.Errorf("expected empty string for unscheduled route, got %q", got)
	}
}
