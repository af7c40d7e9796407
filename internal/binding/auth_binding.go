// Package binding provides per-service state mirrors. A binding subscribes
// to its service's change topic on construction, re-reads service state
// into a local snapshot whenever the topic fires, and exposes imperative
// actions that delegate to the service and then force a re-read so callers
// never wait on the broadcast round-trip.
package binding

import (
	"context"
	"sync"

	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/service"
)

// AuthBinding mirrors the current user. It receives both locally published
// auth changes and changes relayed from other processes.
type AuthBinding struct {
	svc *service.AuthService

	mu     sync.RWMutex
	user   *models.User
	loaded bool
	unsub  func()
}

// NewAuthBinding creates the binding and loads the initial snapshot
func NewAuthBinding(ctx context.Context, svc *service.AuthService, bus *event.Bus) *AuthBinding {
	b := &AuthBinding{svc: svc}
	b.unsub = bus.Subscribe(event.TopicAuthChanged, func(event.Change) {
		b.Refresh(context.Background())
	})
	b.Refresh(ctx)
	return b
}

// Close unsubscribes the binding from the bus
func (b *AuthBinding) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

// Refresh re-reads the current user from the service
func (b *AuthBinding) Refresh(ctx context.Context) {
	user, err := b.svc.CurrentUser(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		// Keep the last good snapshot; the next change event retries.
		return
	}
	b.user = user
	b.loaded = true
}

// User returns the mirrored user, nil when logged out
func (b *AuthBinding) User() *models.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.user == nil {
		return nil
	}
	copied := *b.user
	return &copied
}

// IsAuthenticated reports whether the mirror holds a signed-in user
func (b *AuthBinding) IsAuthenticated() bool {
	return b.User() != nil
}

// Loaded reports whether the initial snapshot has been read
func (b *AuthBinding) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Login delegates to the service and refreshes the snapshot
func (b *AuthBinding) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := b.svc.Login(ctx, email, password)
	b.Refresh(ctx)
	return user, err
}

// Signup delegates to the service and refreshes the snapshot
func (b *AuthBinding) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	user, err := b.svc.Signup(ctx, email, password, name)
	b.Refresh(ctx)
	return user, err
}

// Logout delegates to the service and refreshes the snapshot
func (b *AuthBinding) Logout(ctx context.Context) error {
	err := b.svc.Logout(ctx)
	b.Refresh(ctx)
	return err
}

// DeductTokens delegates to the service and refreshes the snapshot
func (b *AuthBinding) DeductTokens(ctx context.Context, amount int) (int, error) {
	remaining, err := b.svc.DeductTokens(ctx, amount)
	b.Refresh(ctx)
	return remaining, err
}

// AddTokens delegates to the service and refreshes the snapshot
func (b *AuthBinding) AddTokens(ctx context.Context, amount int) (int, error) {
	balance, err := b.svc.AddTokens(ctx, amount)
	b.Refresh(ctx)
	return balance, err
}
