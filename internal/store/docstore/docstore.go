// Package docstore binds the store gateway to Postgres: one JSONB row
// per document. Change fan-out goes through a Notifier so subscriptions
// work both single-instance (LocalNotifier) and across a fleet
// (redisnotify).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shuttle_tracker/internal/store"
)

// Notifier fans out "collection changed" signals. Publish is called
// after every committed write; Subscribe returns a signal channel plus
// a release func. Signals carry no payload: subscribers re-read the
// snapshot, which is what gives the stream its whole-set semantics.
type Notifier interface {
	Publish(ctx context.Context, collection string)
	Subscribe(collection string) (<-chan struct{}, func())
}

type documentRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	DocID      string `gorm:"primaryKey;size:128;column:doc_id"`
	Fields     datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// Store implements store.Gateway on Postgres.
type Store struct {
	db       *gorm.DB
	notifier Notifier

	stampMu   sync.Mutex
	lastStamp time.Time
}

// Open connects to Postgres, migrates the documents table, and wires
// the notifier. A nil notifier gets an in-process LocalNotifier.
func Open(dsn string, notifier Notifier) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("docstore: connect: %w", err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("docstore: migrate: %w", err)
	}
	if notifier == nil {
		notifier = NewLocalNotifier()
	}
	return &Store{db: db, notifier: notifier}, nil
}

// nextStamp mirrors the managed store's monotonic write timestamp.
func (s *Store) nextStamp() time.Time {
	s.stampMu.Lock()
	defer s.stampMu.Unlock()
	now := time.Now().UTC()
	if now.Before(s.lastStamp) {
		now = s.lastStamp
	}
	s.lastStamp = now
	return now
}

func (s *Store) stamp(fields store.Fields) store.Fields {
	out := make(store.Fields, len(fields))
	for k, v := range fields {
		if v == store.ServerTimestamp {
			out[k] = s.nextStamp()
		} else {
			out[k] = v
		}
	}
	return out
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}

func (s *Store) ReadAll(ctx context.Context, collection string) ([]store.Document, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at, doc_id").
		Find(&rows).Error
	if err != nil {
		return nil, unavailable(err)
	}
	docs := make([]store.Document, 0, len(rows))
	for _, row := range rows {
		var fields store.Fields
		if err := json.Unmarshal(row.Fields, &fields); err != nil {
			return nil, fmt.Errorf("docstore: corrupt document %s/%s: %w", collection, row.DocID, err)
		}
		docs = append(docs, store.Document{ID: row.DocID, Fields: fields})
	}
	return docs, nil
}

func (s *Store) ReadByID(ctx context.Context, collection, id string) (store.Fields, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	var fields store.Fields
	if err := json.Unmarshal(row.Fields, &fields); err != nil {
		return nil, fmt.Errorf("docstore: corrupt document %s/%s: %w", collection, id, err)
	}
	return fields, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	id := uuid.NewString()
	raw, err := json.Marshal(s.stamp(fields))
	if err != nil {
		return "", fmt.Errorf("docstore: encode document: %w", err)
	}
	row := documentRow{Collection: collection, DocID: id, Fields: raw}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", unavailable(err)
	}
	s.notifier.Publish(ctx, collection)
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, partial store.Fields) error {
	existing, err := s.ReadByID(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range s.stamp(partial) {
		existing[k] = v
	}
	raw, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	err = s.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("collection = ? AND doc_id = ?", collection, id).
		Update("fields", datatypes.JSON(raw)).Error
	if err != nil {
		return unavailable(err)
	}
	s.notifier.Publish(ctx, collection)
	return nil
}

func (s *Store) CreateOrReplace(ctx context.Context, collection, id string, fields store.Fields) error {
	raw, err := json.Marshal(s.stamp(fields))
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	row := documentRow{Collection: collection, DocID: id, Fields: raw}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return unavailable(err)
	}
	s.notifier.Publish(ctx, collection)
	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, match store.Predicate) (store.Subscription, error) {
	signals, release := s.notifier.Subscribe(collection)
	sub := &subscription{
		events:  make(chan store.Event, 16),
		done:    make(chan struct{}),
		release: release,
	}
	go s.watch(ctx, collection, match, sub, signals)
	return sub, nil
}

// watch emits the current snapshot, then re-reads on every change
// signal. A failed re-read becomes an error event and the watch stays
// alive; the next signal (or recovery read) resumes snapshots.
func (s *Store) watch(ctx context.Context, collection string, match store.Predicate, sub *subscription, signals <-chan struct{}) {
	defer close(sub.events)
	emit := func() {
		docs, err := s.ReadAll(ctx, collection)
		if err != nil {
			sub.send(store.Event{Err: err})
			return
		}
		if match != nil {
			filtered := docs[:0]
			for _, doc := range docs {
				if match(doc) {
					filtered = append(filtered, doc)
				}
			}
			docs = filtered
		}
		sub.send(store.Event{Docs: docs})
	}

	emit()
	for {
		select {
		case <-sub.done:
			return
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			emit()
		}
	}
}

type subscription struct {
	events  chan store.Event
	done    chan struct{}
	release func()
	once    sync.Once
}

func (s *subscription) Events() <-chan store.Event { return s.events }

func (s *subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.release()
	})
}

// send never blocks the watch goroutine: a full buffer drops the
// oldest snapshot so the consumer converges on the latest state.
func (s *subscription) send(ev store.Event) {
	for {
		select {
		case <-s.done:
			return
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
