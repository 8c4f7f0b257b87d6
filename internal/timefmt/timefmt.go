// Package timefmt renders store timestamps as human-readable clock
// strings. The store hands back three shapes over time (server-assigned
// write times, ISO strings from client clocks, and native instants);
// each gets its own variant so call sites never type-probe.
package timefmt

import "time"

const (
	unknownTime      = "Unknown time"
	invalidTimestamp = "Invalid timestamp"
	clockLayout      = "3:04:05 PM"
)

// Value is a tagged timestamp variant.
type Value interface {
	clockString() string
}

// ServerTime is a server-assigned write timestamp.
type ServerTime time.Time

// IsoString is a client-side ISO 8601 / RFC 3339 string.
type IsoString string

// Instant is a plain native instant.
type Instant time.Time

func (v ServerTime) clockString() string {
	t := time.Time(v)
	if t.IsZero() {
		return unknownTime
	}
	return t.Local().Format(clockLayout)
}

func (v IsoString) clockString() string {
	if v == "" {
		return unknownTime
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return invalidTimestamp
	}
	return t.Local().Format(clockLayout)
}

func (v Instant) clockString() string {
	t := time.Time(v)
	if t.IsZero() {
		return unknownTime
	}
	return t.Local().Format(clockLayout)
}

// Format converts any timestamp variant to a local clock string. A nil
// value formats as "Unknown time", matching what riders see for records
// that predate server timestamps.
func Format(v Value) string {
	if v == nil {
		return unknownTime
	}
	return v.clockString()
}

// Coerce maps a raw document field to its variant. This is the single
// place runtime shapes are inspected; everything downstream works with
// tagged values. The second return is false when the field is absent or
// an unrecognized shape.
func Coerce(raw any) (Value, bool) {
	switch t := raw.(type) {
	case time.Time:
		return ServerTime(t), true
	case *time.Time:
		if t == nil {
			return nil, false
		}
		return ServerTime(*t), true
	case string:
		if t == "" {
			return nil, false
		}
		return IsoString(t), true
	default:
		return nil, false
	}
}
