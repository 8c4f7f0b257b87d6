// Package redisnotify bridges docstore change signals over Redis
// pub/sub so every instance's subscriptions observe every instance's
// writes. Redis delivers published messages back to the publisher, so
// local subscribers need no separate path.
package redisnotify

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	logrus "github.com/sirupsen/logrus"
)

const channel = "shuttle:changes"

// Notifier implements docstore.Notifier over a Redis pub/sub channel.
type Notifier struct {
	client *redis.Client

	mu   sync.Mutex
	subs map[string][]chan struct{}
}

// New connects to Redis and starts the shared receive loop.
func New(addr string) (*Notifier, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redisnotify: connect %s: %w", addr, err)
	}

	n := &Notifier{client: client, subs: make(map[string][]chan struct{})}
	pubsub := client.Subscribe(ctx, channel)
	go n.receive(pubsub)
	logrus.WithField("addr", addr).Info("Connected change notifier to Redis")
	return n, nil
}

// Publish broadcasts the changed collection name to the fleet.
func (n *Notifier) Publish(ctx context.Context, collection string) {
	if err := n.client.Publish(ctx, channel, collection).Err(); err != nil {
		logrus.WithError(err).WithField("collection", collection).Warn("Failed to publish change signal")
	}
}

// Subscribe registers for change signals on one collection.
func (n *Notifier) Subscribe(collection string) (<-chan struct{}, func()) {
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

func (n *Notifier) receive(pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		n.mu.Lock()
		for _, ch := range n.subs[msg.Payload] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		n.mu.Unlock()
	}
}
