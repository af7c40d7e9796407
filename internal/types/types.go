// Package types provides common type definitions for the tipbase system.
package types

import "strings"

// Role represents the account role of the signed-in user
type Role string

const (
	// RoleUser represents a regular punter account
	RoleUser Role = "user"
	// RoleTipster represents a tipster account with review privileges
	RoleTipster Role = "tipster"
)

// Valid reports whether the role is a known value
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTipster
}

// NotificationType represents the category of a feed notification
type NotificationType string

const (
	// NotificationTokenPurchase represents a token top-up event
	NotificationTokenPurchase NotificationType = "token_purchase"
	// NotificationTipGeneration represents a tip generation event
	NotificationTipGeneration NotificationType = "tip_generation"
	// NotificationTipsterResults represents settled fixture results
	NotificationTipsterResults NotificationType = "tipster_results"
	// NotificationTipAssigned represents a tip being assigned to a tipster
	NotificationTipAssigned NotificationType = "tip_assigned"
)

// Valid reports whether the notification type is a known value
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTokenPurchase, NotificationTipGeneration,
		NotificationTipsterResults, NotificationTipAssigned:
		return true
	}
	return false
}

// TipStatus represents the generation status of a tip
type TipStatus string

const (
	// TipStatusPending represents a tip still being generated
	TipStatusPending TipStatus = "pending"
	// TipStatusCompleted represents a fully generated tip
	TipStatusCompleted TipStatus = "completed"
)

// Valid reports whether the tip status is a known value
func (s TipStatus) Valid() bool {
	return s == TipStatusPending || s == TipStatusCompleted
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// MinPasswordLength is the minimum accepted password length
const MinPasswordLength = 6

// ValidateCredentials checks the syntactic rules shared by login and signup.
// It returns an empty string when the pair is acceptable, otherwise a
// human-readable reason.
func ValidateCredentials(email, password string) string {
	if email == "" || password == "" {
		return "email and password are required"
	}
	if !strings.Contains(email, "@") {
		return "please enter a valid email address"
	}
	if len(password) < MinPasswordLength {
		return "password must be at least 6 characters"
	}
	return ""
}

// NormalizeEmail lowercases an email for case-insensitive comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns the part of an email before the '@', used as a
// fallback display name.
func EmailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
