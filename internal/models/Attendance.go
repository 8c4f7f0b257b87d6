package models

import "time"

// Attendance record statuses. AttendanceSentinel marks the sentinel record the
// bootstrap writes to materialize the collection; consumers must filter it
// out of any real roster.
const (
	AttendanceConfirmed = "confirmed"
	AttendanceSentinel  = "test"
)

// AttendanceRecord is an append-only confirmation that a student intends
// to board a bus at a stop. Timestamp is the server-assigned write time
// and is authoritative for ordering; CreatedAt is the client's local
// clock, kept for audit/fallback display only.
type AttendanceRecord struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"studentId"`
	BusID          string    `json:"busId"`
	PickupLocation string    `json:"pickupLocation"`
	Status         string    `json:"status"`
	DisplayName    string    `json:"displayName"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
	CreatedAt      string    `json:"createdAt,omitempty"`
	DisplayTime    string    `json:"displayTime,omitempty"`
}
