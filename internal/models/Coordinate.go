package models

// Coordinate is a WGS84 point as sent by the mobile clients.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
