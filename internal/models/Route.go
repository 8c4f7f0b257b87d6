package models

// Stop is one named pickup/drop-off point embedded in a route.
// Students is the expected head count at that stop; it is informational
// only and never reconciled against actual confirmations.
type Stop struct {
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Location      Coordinate `json:"location"`
	ScheduledTime string     `json:"scheduledTime"`
	Students      int        `json:"students"`
}

// Route is an ordered itinerary of stops with display metadata.
// Coordinates runs parallel to Stops and is used for path rendering;
// a length mismatch between the two is tolerated, not fatal.
type Route struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Stops             []Stop       `json:"stops"`
	Coordinates       []Coordinate `json:"coordinates"`
	EstimatedDuration int          `json:"estimatedDuration"` // minutes
}
