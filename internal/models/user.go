// Package models provides data models for the tipbase system.
package models

import (
	"github.com/tipbase-server/internal/types"
)

// User represents an account stored in the account book
type User struct {
	Email  string     `json:"email"`
	Name   string     `json:"name,omitempty"`
	Tokens int        `json:"tokens"`
	Role   types.Role `json:"role,omitempty"`
}

// AccountBook is the persisted value under the auth storage key. The map is
// keyed by normalized email; Current points at the signed-in account, empty
// means logged out. Only one account is ever populated by the demo flows,
// but the shape avoids a single-slot assumption.
type AccountBook struct {
	Current  string           `json:"current"`
	Accounts map[string]*User `json:"accounts"`
}

// NewAccountBook creates an empty account book
func NewAccountBook() *AccountBook {
	return &AccountBook{Accounts: make(map[string]*User)}
}

// CurrentUser returns the signed-in user, or nil when logged out
func (b *AccountBook) CurrentUser() *User {
	if b == nil || b.Current == "" {
		return nil
	}
	return b.Accounts[b.Current]
}

// Lookup returns the account for a normalized email, or nil
func (b *AccountBook) Lookup(email string) *User {
	if b == nil || b.Accounts == nil {
		return nil
	}
	return b.Accounts[email]
}

// Put stores an account and makes it current
func (b *AccountBook) Put(email string, user *User) {
	if b.Accounts == nil {
		b.Accounts = make(map[string]*User)
	}
	b.Accounts[email] = user
	b.Current = email
}

// Remove drops an account; the current pointer is cleared if it pointed at it
func (b *AccountBook) Remove(email string) {
	delete(b.Accounts, email)
	if b.Current == email {
		b.Current = ""
	}
}
