// Package store defines the gateway every component uses to reach the
// realtime document store. Bindings live in subpackages; services only
// ever see this interface so the backend can be swapped per deployment.
package store

import (
	"context"
	"errors"
)

// Collection names. Fixed plural spelling everywhere; earlier client
// revisions drifted between singular and plural and broke lookups.
const (
	Buses      = "buses"
	Routes     = "routes"
	Students   = "students"
	Attendance = "attendance"
	SOSAlerts  = "sos_alerts"
	Meta       = "meta"
)

var (
	// ErrNotFound reports that a document id does not exist in the
	// collection. An empty collection on ReadAll is not an error.
	ErrNotFound = errors.New("store: document not found")

	// ErrUnavailable reports a transport-level failure talking to the
	// backend, distinguishing "store unreachable" from "store empty".
	ErrUnavailable = errors.New("store: backend unavailable")
)

// Fields is the schemaless body of one document.
type Fields map[string]any

// Document pairs a collection-unique id with its fields.
type Document struct {
	ID     string
	Fields Fields
}

// Predicate filters the watched set of a subscription. A nil predicate
// matches every document in the collection.
type Predicate func(Document) bool

// Event is one emission on a snapshot subscription. Docs carries the
// entire current matching set, never a delta. A transport failure is
// delivered as an Event with Err set; the stream stays open and resumes
// delivering snapshots once the backend recovers, so the consumer
// decides whether to tear down or ride it out.
type Event struct {
	Docs []Document
	Err  error
}

// Subscription is a live snapshot stream. Cancel is the disposer: after
// it returns no further events are delivered and the underlying watch is
// released. Cancel is safe to call more than once.
type Subscription interface {
	Events() <-chan Event
	Cancel()
}

// serverTimestamp is the sentinel replaced by the binding's own clock at
// write time. Bindings guarantee the substituted values are monotonically
// non-decreasing per store handle.
type serverTimestamp struct{}

// ServerTimestamp marks a field to be stamped with the server-assigned
// write time, mirroring the managed store's write-side timestamp token.
var ServerTimestamp = serverTimestamp{}

// Gateway is the contract a concrete document store binding fulfils.
//
// ReadAll returns every document in insertion order and never returns
// partial results: a transport error yields ErrUnavailable, not a
// silently empty slice. Update applies partial semantics, leaving
// unlisted fields untouched. CreateOrReplace asserts a caller-known id.
// Subscribe emits the current snapshot immediately, then again after
// every write to the watched set.
type Gateway interface {
	ReadAll(ctx context.Context, collection string) ([]Document, error)
	ReadByID(ctx context.Context, collection, id string) (Fields, error)
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, partial Fields) error
	CreateOrReplace(ctx context.Context, collection, id string, fields Fields) error
	Subscribe(ctx context.Context, collection string, match Predicate) (Subscription, error)
}
