package models

import "time"

// Bus is a single vehicle record with live location and route assignment.
// LastUpdated is stamped by the synchronizer on every location write and
// must never be set by a client directly.
type Bus struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DriverID    string     `json:"driverId"`
	RouteID     string     `json:"routeId,omitempty"`
	Capacity    int        `json:"capacity"`
	Location    Coordinate `json:"location"`
	Status      string     `json:"status"`
	ETA         string     `json:"eta,omitempty"`
	LastUpdated time.Time  `json:"lastUpdated,omitempty"`
}
