// Package service implements the tipbase domain services. Each service
// owns exactly one storage key, serializes every mutation as a single
// read-modify-write, and broadcasts a change event before returning.
package service

import (
	"context"
	"sync"

	"github.com/tipbase-server/internal/apperr"
	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/storage"
	"github.com/tipbase-server/internal/types"
)

// DefaultDeduction is the token cost applied when a deduction amount is
// not specified.
const DefaultDeduction = 5

// AuthService owns the account book under the auth storage key.
//
// This is demo authentication: passwords are never verified against a
// stored credential. Every syntactically valid email/password pair logs in,
// and the tipster role is granted purely by matching the configured demo
// credentials.
type AuthService struct {
	kv  storage.KV
	bus *event.Bus
	cfg config.AuthConfig
	log *logging.Logger
	mu  sync.Mutex
}

// NewAuthService creates a new auth service
func NewAuthService(kv storage.KV, bus *event.Bus, cfg config.AuthConfig, log *logging.Logger) *AuthService {
	if log == nil {
		log = logging.Global()
	}
	return &AuthService{
		kv:  kv,
		bus: bus,
		cfg: cfg,
		log: log.WithField("service", "auth"),
	}
}

// readBook loads the account book, tolerating a missing key, corrupt JSON
// and the legacy single-user blob shape. Corruption reads as logged out.
func (s *AuthService) readBook(ctx context.Context) (*models.AccountBook, error) {
	raw, err := s.kv.Get(ctx, storage.KeyUserAuth)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return models.NewAccountBook(), nil
		}
		return nil, apperr.NewStoreError("get", storage.KeyUserAuth, err)
	}

	book, legacy := decodeAccountBook(raw, s.cfg.DefaultTokens)
	if legacy {
		// Upgrade the stored shape in place so the next read is clean.
		if err := storage.SetJSON(ctx, s.kv, storage.KeyUserAuth, book); err != nil {
			return nil, apperr.NewStoreError("set", storage.KeyUserAuth, err)
		}
	}
	return book, nil
}

func (s *AuthService) writeBook(ctx context.Context, book *models.AccountBook) error {
	if err := storage.SetJSON(ctx, s.kv, storage.KeyUserAuth, book); err != nil {
		return apperr.NewStoreError("set", storage.KeyUserAuth, err)
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil when logged out
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.readBook(ctx)
	if err != nil {
		return nil, err
	}
	return book.CurrentUser(), nil
}

// IsAuthenticated reports whether a user is signed in
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	user, err := s.CurrentUser(ctx)
	return user != nil, err
}

// Login signs a user in. Any syntactically valid pair succeeds; an existing
// account's token balance is preserved, otherwise the default applies. The
// tipster role is assigned iff the email case-insensitively matches the
// demo tipster address and the password matches the demo password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if reason := types.ValidateCredentials(email, password); reason != "" {
		return nil, apperr.NewValidationError(reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.readBook(ctx)
	if err != nil {
		return nil, err
	}

	normalized := types.NormalizeEmail(email)

	role := types.RoleUser
	if normalized == types.NormalizeEmail(s.cfg.TipsterEmail) && password == s.cfg.TipsterPassword {
		role = types.RoleTipster
	}

	tokens := s.cfg.DefaultTokens
	if existing := book.Lookup(normalized); existing != nil {
		tokens = existing.Tokens
	}

	user := &models.User{
		Email:  email,
		Name:   types.EmailLocalPart(email),
		Tokens: tokens,
		Role:   role,
	}

	book.Put(normalized, user)
	if err := s.writeBook(ctx, book); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, event.TopicAuthChanged, storage.KeyUserAuth)
	s.log.WithFields(map[string]interface{}{"email": normalized, "role": string(role)}).Info("user logged in")
	return user, nil
}

// Signup creates a fresh account. It fails when an account with the same
// email already exists.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	if reason := types.ValidateCredentials(email, password); reason != "" {
		return nil, apperr.NewValidationError(reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.readBook(ctx)
	if err != nil {
		return nil, err
	}

	normalized := types.NormalizeEmail(email)
	if book.Lookup(normalized) != nil {
		return nil, apperr.NewDuplicateAccountError(email)
	}

	if name == "" {
		name = types.EmailLocalPart(email)
	}
	user := &models.User{
		Email:  email,
		Name:   name,
		Tokens: s.cfg.DefaultTokens,
		Role:   types.RoleUser,
	}

	book.Put(normalized, user)
	if err := s.writeBook(ctx, book); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, event.TopicAuthChanged, storage.KeyUserAuth)
	s.log.WithField("email", normalized).Info("user signed up")
	return user, nil
}

// Logout removes the current account and clears the signed-in pointer
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.readBook(ctx)
	if err != nil {
		return err
	}
	if book.Current != "" {
		book.Remove(book.Current)
	}

	if err := s.writeBook(ctx, book); err != nil {
		return err
	}

	s.bus.Publish(ctx, event.TopicAuthChanged, storage.KeyUserAuth)
	return nil
}

// DeductTokens removes amount tokens from the current user's balance in a
// single read-modify-write and returns the remaining balance. Amounts <= 0
// default to DefaultDeduction.
func (s *AuthService) DeductTokens(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		amount = DefaultDeduction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.readBook(ctx)
	if err != nil {
		return 0, err
	}

	user := book.CurrentUser()
	if user == nil {
		return 0, apperr.NewNotAuthenticatedError()
	}
	if user.Tokens < amount {
		return 0, apperr.NewInsufficientBalanceError(amount, user.Tokens)
	}

	user.Tokens -= amount
	if err := s.writeBook(ctx, book); err != nil {
		return 0, err
	}

	s.bus.Publish(ctx, event.TopicAuthChanged, storage.KeyUserAuth)
	return user.Tokens, nil
}

// AddTokens credits the current user's balance and returns the new balance
func (s *AuthService) AddTokens(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperr.NewValidationError("top-up amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.readBook(ctx)
	if err != nil {
		return 0, err
	}

	user := book.CurrentUser()
	if user == nil {
		return 0, apperr.NewNotAuthenticatedError()
	}

	user.Tokens += amount
	if err := s.writeBook(ctx, book); err != nil {
		return 0, err
	}

	s.bus.Publish(ctx, event.TopicAuthChanged, storage.KeyUserAuth)
	return user.Tokens, nil
}

// RemainingTokens returns the current balance, 0 when logged out
func (s *AuthService) RemainingTokens(ctx context.Context) (int, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, nil
	}
	return user.Tokens, nil
}
