// Package event provides the typed change-event bus the domain services
// broadcast on after every mutation. Events carry no state; subscribers
// re-query the owning service.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/retry"
)

// Topic identifies one service's change signal
type Topic string

const (
	// TopicAuthChanged fires after any auth/token mutation
	TopicAuthChanged Topic = "auth-change"
	// TopicNotificationsChanged fires after any feed mutation
	TopicNotificationsChanged Topic = "notifications-change"
	// TopicTipsChanged fires after any tip collection mutation
	TopicTipsChanged Topic = "tips-change"
)

// Change is the event payload. Origin identifies the publishing process so
// relayed copies of a process's own events are dropped, the same way the
// browser storage event never fires in the writing tab.
type Change struct {
	Topic  Topic  `json:"topic"`
	Key    string `json:"key"`
	Origin string `json:"origin"`
	Remote bool   `json:"-"`
}

// Handler receives a change notification
type Handler func(Change)

// Channel is the Redis pub/sub channel carrying relayed changes
const Channel = "tbase:events"

type subscription struct {
	id      uint64
	topic   Topic
	handler Handler
}

// Bus dispatches change events to local subscribers synchronously, in
// registration order, before Publish returns. When built with a Redis
// client it additionally relays events to other processes.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
	origin string
	rdb    *redis.Client
	log    *logging.Logger
}

// NewBus creates an in-process bus; rdb may be nil for tests
func NewBus(rdb *redis.Client, log *logging.Logger) *Bus {
	if log == nil {
		log = logging.Global()
	}
	return &Bus{
		origin: uuid.New().String(),
		rdb:    rdb,
		log:    log.WithField("component", "event-bus"),
	}
}

// Origin returns the bus's process identity
func (b *Bus) Origin() string {
	return b.origin
}

// Subscribe registers a handler for a topic and returns an unsubscribe
// function. Handlers registered earlier are always invoked earlier.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish dispatches a change to local subscribers and relays it to other
// processes. Local dispatch completes before Publish returns.
func (b *Bus) Publish(ctx context.Context, topic Topic, key string) {
	change := Change{Topic: topic, Key: key, Origin: b.origin}
	b.dispatch(change)

	if b.rdb == nil {
		return
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		b.log.WithError(err).Warn("failed to relay change event")
	}
}

func (b *Bus) dispatch(change Change) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topic == change.Topic {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(change)
	}
}

// Run consumes relayed changes from other processes until the context is
// cancelled, reconnecting with backoff on subscription failure. Events
// published by this process are skipped.
func (b *Bus) Run(ctx context.Context) {
	if b.rdb == nil {
		<-ctx.Done()
		return
	}

	cfg := &retry.Config{
		MaxAttempts:  0, // keep reconnecting for the process lifetime
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for ctx.Err() == nil {
		err := retry.WithBackoff(ctx, cfg, b.log, func(ctx context.Context, attempt int) error {
			return b.consume(ctx)
		})
		if err != nil && ctx.Err() == nil {
			b.log.WithError(err).Warn("event relay stopped, restarting")
		}
	}
}

func (b *Bus) consume(ctx context.Context) error {
	pubsub := b.rdb.Subscribe(ctx, Channel)
	defer func() {
		_ = pubsub.Close()
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				continue
			}
			if change.Origin == b.origin {
				continue
			}
			change.Remote = true
			b.dispatch(change)
		}
	}
}
