package binding

import (
	"context"
	"sync"

	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/service"
)

// TipsBinding mirrors the generated-tip collection
type TipsBinding struct {
	svc *service.TipsService

	mu     sync.RWMutex
	tips   []*models.GeneratedTip
	loaded bool
	unsub  func()
}

// NewTipsBinding creates the binding and loads the initial snapshot
func NewTipsBinding(ctx context.Context, svc *service.TipsService, bus *event.Bus) *TipsBinding {
	b := &TipsBinding{svc: svc}
	b.unsub = bus.Subscribe(event.TopicTipsChanged, func(event.Change) {
		b.Refresh(context.Background())
	})
	b.Refresh(ctx)
	return b
}

// Close unsubscribes the binding from the bus
func (b *TipsBinding) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

// Refresh re-reads the collection from the service
func (b *TipsBinding) Refresh(ctx context.Context) {
	tips, err := b.svc.List(ctx)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tips = tips
	b.loaded = true
}

// Tips returns the mirrored collection, newest first
func (b *TipsBinding) Tips() []*models.GeneratedTip {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*models.GeneratedTip, len(b.tips))
	copy(out, b.tips)
	return out
}

// Loaded reports whether the initial snapshot has been read
func (b *TipsBinding) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Generate delegates to the service and refreshes the snapshot
func (b *TipsBinding) Generate(ctx context.Context, filters models.TipFilters) (*models.GeneratedTip, error) {
	tip, err := b.svc.Generate(ctx, filters)
	b.Refresh(ctx)
	return tip, err
}

// Delete delegates to the service and refreshes the snapshot
func (b *TipsBinding) Delete(ctx context.Context, id string) error {
	err := b.svc.Delete(ctx, id)
	b.Refresh(ctx)
	return err
}

// ClearAll delegates to the service and refreshes the snapshot
func (b *TipsBinding) ClearAll(ctx context.Context) error {
	err := b.svc.ClearAll(ctx)
	b.Refresh(ctx)
	return err
}
