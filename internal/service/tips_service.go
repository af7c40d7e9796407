package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tipbase-server/internal/apperr"
	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/storage"
	"github.com/tipbase-server/internal/types"
)

// TipsService owns the generated-tip collection. Generation is synchronous
// and always succeeds; tips are created already completed. Once generated,
// fixtures never change except their comment lists, which only grow.
type TipsService struct {
	kv  storage.KV
	bus *event.Bus
	cfg config.TipsConfig
	gen *FixtureGenerator
	log *logging.Logger
	mu  sync.Mutex

	now func() time.Time
}

// NewTipsService creates a new tips service
func NewTipsService(kv storage.KV, bus *event.Bus, cfg config.TipsConfig, log *logging.Logger) *TipsService {
	if log == nil {
		log = logging.Global()
	}
	if cfg.MaxStored <= 0 {
		cfg.MaxStored = 50
	}
	if cfg.MinFixtures <= 0 {
		cfg.MinFixtures = 5
	}
	if cfg.MaxFixtures < cfg.MinFixtures {
		cfg.MaxFixtures = cfg.MinFixtures
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 7 * 24 * time.Hour
	}
	return &TipsService{
		kv:  kv,
		bus: bus,
		cfg: cfg,
		gen: NewFixtureGenerator(cfg.Horizon),
		log: log.WithField("service", "tips"),
		now: time.Now,
	}
}

func (s *TipsService) read(ctx context.Context) ([]*models.GeneratedTip, error) {
	var tips []*models.GeneratedTip
	found, err := storage.GetJSON(ctx, s.kv, storage.KeyGeneratedTips, &tips)
	if err != nil {
		return nil, apperr.NewStoreError("get", storage.KeyGeneratedTips, err)
	}
	if !found {
		return []*models.GeneratedTip{}, nil
	}
	return tips, nil
}

func (s *TipsService) write(ctx context.Context, tips []*models.GeneratedTip) error {
	if err := storage.SetJSON(ctx, s.kv, storage.KeyGeneratedTips, tips); err != nil {
		return apperr.NewStoreError("set", storage.KeyGeneratedTips, err)
	}
	return nil
}

// List returns all tips, newest first
func (s *TipsService) List(ctx context.Context) ([]*models.GeneratedTip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// GetByID returns a tip by id, or nil when absent. Absence is not an
// error; callers must treat nil as not-found.
func (s *TipsService) GetByID(ctx context.Context, id string) (*models.GeneratedTip, error) {
	tips, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, tip := range tips {
		if tip.ID == id {
			return tip, nil
		}
	}
	return nil, nil
}

// Generate synthesizes a new tip from the supplied filter snapshot,
// prepends it and truncates the collection to its cap. The tip is
// completed immediately; there is no asynchronous pipeline.
func (s *TipsService) Generate(ctx context.Context, filters models.TipFilters) (*models.GeneratedTip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := s.gen.FixtureCount(s.cfg.MinFixtures, s.cfg.MaxFixtures)

	tip := &models.GeneratedTip{
		ID:        fmt.Sprintf("tip-%d-%s", now.UnixMilli(), uuid.New().String()[:9]),
		Timestamp: now.UnixMilli(),
		Filters:   filters,
		Fixtures:  s.gen.Generate(count),
		Status:    types.TipStatusCompleted,
	}

	tips, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	tips = append([]*models.GeneratedTip{tip}, tips...)
	if len(tips) > s.cfg.MaxStored {
		tips = tips[:s.cfg.MaxStored]
	}

	if err := s.write(ctx, tips); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, event.TopicTipsChanged, storage.KeyGeneratedTips)
	s.log.WithFields(map[string]interface{}{"tipId": tip.ID, "fixtures": count}).Info("tip generated")
	return tip, nil
}

// Delete removes one tip by id
func (s *TipsService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tips, err := s.read(ctx)
	if err != nil {
		return err
	}

	filtered := tips[:0]
	for _, tip := range tips {
		if tip.ID != id {
			filtered = append(filtered, tip)
		}
	}

	if err := s.write(ctx, filtered); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicTipsChanged, storage.KeyGeneratedTips)
	return nil
}

// ClearAll replaces the collection with an empty list
func (s *TipsService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, []*models.GeneratedTip{}); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicTipsChanged, storage.KeyGeneratedTips)
	return nil
}

// AssignTipster sets the assigned-tipster fields on the matching tip.
// Unknown tip ids are a silent no-op; assignment is an attribute, not a
// status transition.
func (s *TipsService) AssignTipster(ctx context.Context, tipID string, tipster models.Tipster) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tips, err := s.read(ctx)
	if err != nil {
		return err
	}

	for _, tip := range tips {
		if tip.ID == tipID {
			tip.AssignedTipsterID = tipster.ID
			tip.AssignedTipsterName = tipster.Name
			tip.AssignedTipsterRating = tipster.Rating
			break
		}
	}

	if err := s.write(ctx, tips); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicTipsChanged, storage.KeyGeneratedTips)
	return nil
}

// AddReviewWithComments appends one comment per fixture that has an entry
// in commentsByFixtureID, built from the tipster identity. Fixtures with no
// provided comment gain nothing. Unknown tip ids are a silent no-op.
func (s *TipsService) AddReviewWithComments(ctx context.Context, tipID string, tipster models.Tipster, commentsByFixtureID map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tips, err := s.read(ctx)
	if err != nil {
		return err
	}

	for _, tip := range tips {
		if tip.ID != tipID {
			continue
		}
		for i := range tip.Fixtures {
			comment, ok := commentsByFixtureID[tip.Fixtures[i].ID]
			if !ok || comment == "" {
				continue
			}
			tip.Fixtures[i].Comments = append(tip.Fixtures[i].Comments, models.TipsterComment{
				TipsterID:     tipster.ID,
				TipsterName:   tipster.Name,
				TipsterRating: tipster.Rating,
				TipsterAvatar: tipster.Avatar,
				Comment:       comment,
			})
		}
		break
	}

	if err := s.write(ctx, tips); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicTipsChanged, storage.KeyGeneratedTips)
	return nil
}

// AddReview appends one comment to every fixture of the tip. A nil
// commentFn falls back to a canned insight built from the prediction.
func (s *TipsService) AddReview(ctx context.Context, tipID string, tipster models.Tipster, commentFn func(models.Fixture) string) error {
	if commentFn == nil {
		commentFn = func(fx models.Fixture) string {
			label := fx.Prediction
			if label == "" {
				label = "Review"
			}
			return fmt.Sprintf("Insight: %s looks solid given recent form.", label)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tips, err := s.read(ctx)
	if err != nil {
		return err
	}

	for _, tip := range tips {
		if tip.ID != tipID {
			continue
		}
		for i := range tip.Fixtures {
			tip.Fixtures[i].Comments = append(tip.Fixtures[i].Comments, models.TipsterComment{
				TipsterID:     tipster.ID,
				TipsterName:   tipster.Name,
				TipsterRating: tipster.Rating,
				TipsterAvatar: tipster.Avatar,
				Comment:       commentFn(tip.Fixtures[i]),
			})
		}
		break
	}

	if err := s.write(ctx, tips); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicTipsChanged, storage.KeyGeneratedTips)
	return nil
}
