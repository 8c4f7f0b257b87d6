// Package memstore is the in-process binding of the store gateway. It
// backs development mode and the test suites: full snapshot-subscription
// semantics without a network hop, plus an offline switch to exercise
// the unreachable-store paths.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"shuttle_tracker/internal/store"
)

type collection struct {
	docs  map[string]store.Fields
	order []string
}

// Store implements store.Gateway entirely in memory.
type Store struct {
	mu        sync.Mutex
	colls     map[string]*collection
	subs      map[string][]*subscription
	lastStamp time.Time
	offline   bool
	clock     func() time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		colls: make(map[string]*collection),
		subs:  make(map[string][]*subscription),
		clock: time.Now,
	}
}

// SetClock replaces the server-timestamp source. Test hook.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// SetOffline simulates a transport outage. While offline every operation
// fails with store.ErrUnavailable and live subscriptions receive an
// error event; flipping back online pushes a fresh snapshot to each
// subscription so consumers converge without resubscribing.
func (s *Store) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline == offline {
		return
	}
	s.offline = offline
	for _, subs := range s.subs {
		for _, sub := range subs {
			if offline {
				sub.push(store.Event{Err: store.ErrUnavailable})
			} else {
				sub.push(store.Event{Docs: s.snapshotLocked(sub.collection, sub.match)})
			}
		}
	}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.colls[name]
	if !ok {
		c = &collection{docs: make(map[string]store.Fields)}
		s.colls[name] = c
	}
	return c
}

// nextStamp returns the server-assigned write time, clamped so stamps
// never go backwards even if the wall clock does.
func (s *Store) nextStamp() time.Time {
	now := s.clock()
	if now.Before(s.lastStamp) {
		now = s.lastStamp
	}
	s.lastStamp = now
	return now
}

func (s *Store) stamp(fields store.Fields) store.Fields {
	out := cloneFields(fields)
	for k, v := range out {
		if v == store.ServerTimestamp {
			out[k] = s.nextStamp()
		}
	}
	return out
}

func cloneFields(fields store.Fields) store.Fields {
	out := make(store.Fields, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = cloneValue(e)
		}
		return l
	default:
		return v
	}
}

func (s *Store) ReadAll(ctx context.Context, collection string) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return nil, store.ErrUnavailable
	}
	return s.snapshotLocked(collection, nil), nil
}

func (s *Store) ReadByID(ctx context.Context, collection, id string) (store.Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return nil, store.ErrUnavailable
	}
	fields, ok := s.coll(collection).docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneFields(fields), nil
}

func (s *Store) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return "", store.ErrUnavailable
	}
	id := uuid.NewString()
	c := s.coll(collection)
	c.docs[id] = s.stamp(fields)
	c.order = append(c.order, id)
	s.notifyLocked(collection)
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, partial store.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return store.ErrUnavailable
	}
	c := s.coll(collection)
	existing, ok := c.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range s.stamp(partial) {
		existing[k] = v
	}
	s.notifyLocked(collection)
	return nil
}

func (s *Store) CreateOrReplace(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return store.ErrUnavailable
	}
	c := s.coll(collection)
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = s.stamp(fields)
	s.notifyLocked(collection)
	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, match store.Predicate) (store.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return nil, store.ErrUnavailable
	}
	sub := &subscription{
		owner:      s,
		collection: collection,
		match:      match,
		events:     make(chan store.Event, snapshotBuffer),
	}
	s.subs[collection] = append(s.subs[collection], sub)
	sub.push(store.Event{Docs: s.snapshotLocked(collection, match)})
	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			sub.Cancel()
		}()
	}
	return sub, nil
}

// snapshotLocked builds the full current matching set in insertion order.
func (s *Store) snapshotLocked(collection string, match store.Predicate) []store.Document {
	c := s.coll(collection)
	docs := make([]store.Document, 0, len(c.order))
	for _, id := range c.order {
		doc := store.Document{ID: id, Fields: cloneFields(c.docs[id])}
		if match == nil || match(doc) {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (s *Store) notifyLocked(collection string) {
	for _, sub := range s.subs[collection] {
		sub.push(store.Event{Docs: s.snapshotLocked(collection, sub.match)})
	}
}

func (s *Store) dropSub(target *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subs[target.collection]
	for i, sub := range subs {
		if sub == target {
			s.subs[target.collection] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

const snapshotBuffer = 16

type subscription struct {
	owner      *Store
	collection string
	match      store.Predicate
	events     chan store.Event
	cancelOnce sync.Once
	canceled   bool
}

func (s *subscription) Events() <-chan store.Event { return s.events }

// push delivers under the store lock. A full buffer drops the oldest
// queued snapshot so a slow consumer always sees the latest state;
// intermediate snapshots carry no information the final one lacks.
func (s *subscription) push(ev store.Event) {
	if s.canceled {
		return
	}
	for {
		select {
		case s.events <- ev:
			return
		default:
			select {
			case <-s.events:
			default:
			}
		}
	}
}

func (s *subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.owner.dropSub(s)
		s.owner.mu.Lock()
		s.canceled = true
		close(s.events)
		s.owner.mu.Unlock()
	})
}
