package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tipbase-server/internal/apperr"
	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/storage"
	"github.com/tipbase-server/internal/types"
)

// NotificationService owns the append-only notification feed. The feed is
// stored newest-first and capped; the oldest entries are evicted silently.
type NotificationService struct {
	kv  storage.KV
	bus *event.Bus
	cfg config.FeedConfig
	log *logging.Logger
	mu  sync.Mutex

	now func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(kv storage.KV, bus *event.Bus, cfg config.FeedConfig, log *logging.Logger) *NotificationService {
	if log == nil {
		log = logging.Global()
	}
	if cfg.MaxStored <= 0 {
		cfg.MaxStored = 50
	}
	return &NotificationService{
		kv:  kv,
		bus: bus,
		cfg: cfg,
		log: log.WithField("service", "notifications"),
		now: time.Now,
	}
}

// read loads the feed; a missing or corrupt blob reads as empty
func (s *NotificationService) read(ctx context.Context) ([]*models.Notification, error) {
	var feed []*models.Notification
	found, err := storage.GetJSON(ctx, s.kv, storage.KeyNotifications, &feed)
	if err != nil {
		return nil, apperr.NewStoreError("get", storage.KeyNotifications, err)
	}
	if !found {
		return []*models.Notification{}, nil
	}
	return feed, nil
}

func (s *NotificationService) write(ctx context.Context, feed []*models.Notification) error {
	if err := storage.SetJSON(ctx, s.kv, storage.KeyNotifications, feed); err != nil {
		return apperr.NewStoreError("set", storage.KeyNotifications, err)
	}
	return nil
}

// List returns all notifications, newest first
func (s *NotificationService) List(ctx context.Context) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Add synthesizes id, timestamp and read flag, prepends the notification
// and truncates the feed to its cap.
func (s *NotificationService) Add(ctx context.Context, typ types.NotificationType, title, message string) (*models.Notification, error) {
	if !typ.Valid() {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown notification type: %s", typ))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	feed, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	notification := &models.Notification{
		ID:        newFeedID(now),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: now.UnixMilli(),
		Read:      false,
	}

	feed = append([]*models.Notification{notification}, feed...)
	if len(feed) > s.cfg.MaxStored {
		feed = feed[:s.cfg.MaxStored]
	}

	if err := s.write(ctx, feed); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, event.TopicNotificationsChanged, storage.KeyNotifications)
	return notification, nil
}

// MarkRead flips one notification's read flag. Marking an already-read or
// unknown notification has no observable effect.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed, err := s.read(ctx)
	if err != nil {
		return err
	}

	for _, n := range feed {
		if n.ID == id {
			n.Read = true
		}
	}

	if err := s.write(ctx, feed); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicNotificationsChanged, storage.KeyNotifications)
	return nil
}

// MarkAllRead flips every notification's read flag
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed, err := s.read(ctx)
	if err != nil {
		return err
	}

	for _, n := range feed {
		n.Read = true
	}

	if err := s.write(ctx, feed); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicNotificationsChanged, storage.KeyNotifications)
	return nil
}

// ClearAll replaces the feed with an empty list
func (s *NotificationService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, []*models.Notification{}); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicNotificationsChanged, storage.KeyNotifications)
	return nil
}

// UnreadCount is derived by filtering on every call, never stored
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	feed, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range feed {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// newFeedID builds a millisecond-timestamp plus random-suffix identifier
func newFeedID(now time.Time) string {
	return fmt.Sprintf("%d-%09d", now.UnixMilli(), rand.Intn(1_000_000_000))
}
