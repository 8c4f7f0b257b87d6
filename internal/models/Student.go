package models

// Student is read-only reference data seeded once at bootstrap.
// StudentID is the university-issued identifier and is distinct from
// the record's storage id.
type Student struct {
	ID                      string `json:"id"`
	StudentID               string `json:"studentId"`
	Name                    string `json:"name"`
	Email                   string `json:"email"`
	PreferredPickupLocation string `json:"preferredPickupLocation"`
	RouteID                 string `json:"routeId,omitempty"`
}
