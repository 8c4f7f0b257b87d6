package tracker

import "shuttle_tracker/internal/models"

// MockBus is the documented read-path fallback: returned whenever the
// bus collection is empty or unreachable so screens never observe a
// total outage while the process itself is healthy.
func MockBus() models.Bus {
	return models.Bus{
		ID:       "bus1",
		Name:     "Campus Bus",
		DriverID: "driver1",
		RouteID:  "route1",
		Capacity: 20,
		Location: models.Coordinate{Latitude: 37.78825, Longitude: -122.4324},
		Status:   "active",
		ETA:      "5 min",
	}
}

// MockRoute is the read-path fallback for route lookups.
func MockRoute() models.Route {
	return models.Route{
		ID:          "route1",
		Name:        "Campus Route",
		Description: "Main Campus → Dorms → Library",
		Stops: []models.Stop{
			{
				Name:          "Main Campus",
				Address:       "123 University Ave",
				Location:      models.Coordinate{Latitude: 37.78825, Longitude: -122.4324},
				ScheduledTime: "7:30 AM",
				Students:      4,
			},
			{
				Name:          "Dorms",
				Address:       "789 Residence Rd",
				Location:      models.Coordinate{Latitude: 37.78425, Longitude: -122.4354},
				ScheduledTime: "7:45 AM",
				Students:      2,
			},
			{
				Name:          "Library",
				Address:       "456 Book St",
				Location:      models.Coordinate{Latitude: 37.78625, Longitude: -122.4344},
				ScheduledTime: "8:00 AM",
				Students:      3,
			},
		},
		Coordinates: []models.Coordinate{
			{Latitude: 37.78825, Longitude: -122.4324},
			{Latitude: 37.78425, Longitude: -122.4354},
			{Latitude: 37.78625, Longitude: -122.4344},
		},
		EstimatedDuration: 30,
	}
}
