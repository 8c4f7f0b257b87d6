package attendance

import "shuttle_tracker/internal/models"

// UnknownLocation is the grouping key for records whose pickup location
// is empty or absent.
const UnknownLocation = "Unknown Location"

// Roster is an attendance snapshot partitioned by pickup stop. Order
// lists stops by first appearance in the snapshot; within each group
// records keep their snapshot arrival order.
type Roster struct {
	Order  []string
	Groups map[string][]models.AttendanceRecord
}

// Count returns the total number of records across all groups.
func (r Roster) Count() int {
	n := 0
	for _, group := range r.Groups {
		n += len(group)
	}
	return n
}

// GroupByStop partitions a snapshot into per-stop groups. The store
// does not enforce that a pickup location matches a stop name, so the
// keys are whatever the records carry, with empties bucketed under
// UnknownLocation.
func GroupByStop(records []models.AttendanceRecord) Roster {
	roster := Roster{Groups: make(map[string][]models.AttendanceRecord)}
	for _, record := range records {
		key := record.PickupLocation
		if key == "" {
			key = UnknownLocation
		}
		if _, seen := roster.Groups[key]; !seen {
			roster.Order = append(roster.Order, key)
		}
		roster.Groups[key] = append(roster.Groups[key], record)
	}
	return roster
}
