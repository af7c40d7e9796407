package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/storage"
	"github.com/tipbase-server/internal/types"
)

func setupResultsMonitor(t *testing.T) (*ResultsMonitor, *TipsService, *NotificationService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := storage.NewRedisKVFromClient(client)
	bus := event.NewBus(nil, nil)

	tips := NewTipsService(kv, bus, testTipsConfig(), nil)
	notifications := NewNotificationService(kv, bus, config.FeedConfig{MaxStored: 50}, nil)
	monitor := NewResultsMonitor(tips, notifications, kv, config.MonitorConfig{Interval: time.Minute}, nil)

	return monitor, tips, notifications, mr
}

func TestResultsMonitor_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("announces a settled tip exactly once", func(t *testing.T) {
		monitor, tips, notifications, _ := setupResultsMonitor(t)

		_, err := tips.Generate(ctx, models.TipFilters{})
		require.NoError(t, err)

		// Past every fixture's kick-off
		settledAt := time.Now().Add(9 * 24 * time.Hour)
		monitor.now = func() time.Time { return settledAt }

		require.NoError(t, monitor.Sweep(ctx))

		feed, err := notifications.List(ctx)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		assert.Equal(t, types.NotificationTipsterResults, feed[0].Type)
		assert.Equal(t, "Results are in", feed[0].Title)

		// A second sweep announces nothing new
		require.NoError(t, monitor.Sweep(ctx))

		feed, err = notifications.List(ctx)
		require.NoError(t, err)
		assert.Len(t, feed, 1)
	})

	t.Run("unsettled tips stay silent", func(t *testing.T) {
		monitor, tips, notifications, _ := setupResultsMonitor(t)

		_, err := tips.Generate(ctx, models.TipFilters{})
		require.NoError(t, err)

		// Fixtures lie ahead of this clock, so nothing has settled
		beforeKickoff := time.Now().Add(-24 * time.Hour)
		monitor.now = func() time.Time { return beforeKickoff }
		require.NoError(t, monitor.Sweep(ctx))

		feed, err := notifications.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, feed)
	})

	t.Run("empty collection is a no-op", func(t *testing.T) {
		monitor, _, notifications, _ := setupResultsMonitor(t)

		require.NoError(t, monitor.Sweep(ctx))

		feed, err := notifications.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, feed)
	})

	t.Run("corrupt seen list is rebuilt", func(t *testing.T) {
		monitor, tips, notifications, mr := setupResultsMonitor(t)

		_, err := tips.Generate(ctx, models.TipFilters{})
		require.NoError(t, err)

		mr.Set(storage.KeyResultsSeen, "not json at all")
		settledAt := time.Now().Add(9 * 24 * time.Hour)
		monitor.now = func() time.Time { return settledAt }

		require.NoError(t, monitor.Sweep(ctx))

		feed, err := notifications.List(ctx)
		require.NoError(t, err)
		assert.Len(t, feed, 1)
	})
}

func TestResultsMonitor_StartStop(t *testing.T) {
	monitor, _, _, _ := setupResultsMonitor(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, monitor.Start(ctx))
	require.NoError(t, monitor.Stop())

	// Stop on a never-started monitor is safe
	fresh, _, _, _ := setupResultsMonitor(t)
	require.NoError(t, fresh.Stop())
}
