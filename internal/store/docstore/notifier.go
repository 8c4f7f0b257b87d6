package docstore

import (
	"context"
	"sync"
)

// LocalNotifier fans change signals out to in-process subscribers only.
// It is the right notifier for a single-instance deployment; multi
// instance deployments bridge through redisnotify instead.
type LocalNotifier struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

// NewLocalNotifier returns an empty in-process notifier.
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[string][]chan struct{})}
}

// Publish signals every subscriber of the collection. Signals coalesce:
// a subscriber with a pending signal gets no second one, it will re-read
// the latest state anyway.
func (n *LocalNotifier) Publish(_ context.Context, collection string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers for change signals on one collection.
func (n *LocalNotifier) Subscribe(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[collection] = append(n.subs[collection], ch)
	n.mu.Unlock()

	release := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		subs := n.subs[collection]
		for i, c := range subs {
			if c == ch {
				n.subs[collection] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, release
}
