package binding

import (
	"context"
	"sync"

	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/service"
)

// NotificationsBinding mirrors the notification feed and its unread count
type NotificationsBinding struct {
	svc *service.NotificationService

	mu            sync.RWMutex
	notifications []*models.Notification
	unreadCount   int
	loaded        bool
	unsub         func()
}

// NewNotificationsBinding creates the binding and loads the initial snapshot
func NewNotificationsBinding(ctx context.Context, svc *service.NotificationService, bus *event.Bus) *NotificationsBinding {
	b := &NotificationsBinding{svc: svc}
	b.unsub = bus.Subscribe(event.TopicNotificationsChanged, func(event.Change) {
		b.Refresh(context.Background())
	})
	b.Refresh(ctx)
	return b
}

// Close unsubscribes the binding from the bus
func (b *NotificationsBinding) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

// Refresh re-reads the feed and unread count from the service
func (b *NotificationsBinding) Refresh(ctx context.Context) {
	feed, err := b.svc.List(ctx)
	if err != nil {
		return
	}
	unread := 0
	for _, n := range feed {
		if !n.Read {
			unread++
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = feed
	b.unreadCount = unread
	b.loaded = true
}

// Notifications returns the mirrored feed, newest first
func (b *NotificationsBinding) Notifications() []*models.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*models.Notification, len(b.notifications))
	copy(out, b.notifications)
	return out
}

// UnreadCount returns the mirrored unread count
func (b *NotificationsBinding) UnreadCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unreadCount
}

// Loaded reports whether the initial snapshot has been read
func (b *NotificationsBinding) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// MarkRead delegates to the service and refreshes the snapshot
func (b *NotificationsBinding) MarkRead(ctx context.Context, id string) error {
	err := b.svc.MarkRead(ctx, id)
	b.Refresh(ctx)
	return err
}

// MarkAllRead delegates to the service and refreshes the snapshot
func (b *NotificationsBinding) MarkAllRead(ctx context.Context) error {
	err := b.svc.MarkAllRead(ctx)
	b.Refresh(ctx)
	return err
}

// ClearAll delegates to the service and refreshes the snapshot
func (b *NotificationsBinding) ClearAll(ctx context.Context) error {
	err := b.svc.ClearAll(ctx)
	b.Refresh(ctx)
	return err
}
