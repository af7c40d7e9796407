package event

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_LocalDispatch(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx := context.Background()

	t.Run("handlers fire in registration order before publish returns", func(t *testing.T) {
		var order []string
		bus.Subscribe(TopicAuthChanged, func(Change) { order = append(order, "first") })
		bus.Subscribe(TopicAuthChanged, func(Change) { order = append(order, "second") })

		bus.Publish(ctx, TopicAuthChanged, "k")

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("other topics stay quiet", func(t *testing.T) {
		fired := false
		bus.Subscribe(TopicTipsChanged, func(Change) { fired = true })

		bus.Publish(ctx, TopicNotificationsChanged, "k")

		assert.False(t, fired)
	})

	t.Run("local changes are not marked remote", func(t *testing.T) {
		var got Change
		bus.Subscribe(TopicNotificationsChanged, func(c Change) { got = c })

		bus.Publish(ctx, TopicNotificationsChanged, "feed-key")

		assert.Equal(t, TopicNotificationsChanged, got.Topic)
		assert.Equal(t, "feed-key", got.Key)
		assert.Equal(t, bus.Origin(), got.Origin)
		assert.False(t, got.Remote)
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx := context.Background()

	count := 0
	unsubscribe := bus.Subscribe(TopicAuthChanged, func(Change) { count++ })

	bus.Publish(ctx, TopicAuthChanged, "k")
	unsubscribe()
	bus.Publish(ctx, TopicAuthChanged, "k")

	assert.Equal(t, 1, count)

	// Unsubscribing twice is safe
	unsubscribe()
}

func TestBus_CrossProcessRelay(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	busA := NewBus(clientA, nil)
	busB := NewBus(clientB, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Change, 1)
	busB.Subscribe(TopicTipsChanged, func(c Change) { received <- c })

	go busB.Run(ctx)

	// Give the consumer a moment to subscribe before publishing
	require.Eventually(t, func() bool {
		busA.Publish(ctx, TopicTipsChanged, "tips-key")
		select {
		case c := <-received:
			assert.True(t, c.Remote)
			assert.Equal(t, busA.Origin(), c.Origin)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBus_RelaySkipsOwnEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewBus(client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bus.Run(ctx)

	count := 0
	bus.Subscribe(TopicAuthChanged, func(Change) { count++ })

	// Let the relay connect, then publish repeatedly; only the synchronous
	// local dispatch may count, never a relayed duplicate.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		bus.Publish(ctx, TopicAuthChanged, "k")
	}
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 5, count)
}
