// Package apperr provides categorized errors shared by the service and API
// layers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tipbase-server/internal/types"
)

// Category represents the category of an error
type Category string

const (
	// CategoryValidation represents malformed user input (4xx)
	CategoryValidation Category = "validation"
	// CategoryAuth represents authentication state errors
	CategoryAuth Category = "auth"
	// CategoryBalance represents token balance errors
	CategoryBalance Category = "balance"
	// CategoryNotFound represents missing resources
	CategoryNotFound Category = "not_found"
	// CategoryStore represents key-value store failures
	CategoryStore Category = "store"
	// CategorySystem represents internal errors (5xx)
	CategorySystem Category = "system"
)

// Error represents an error with category and HTTP status code
type Error struct {
	Category   Category
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a wire-level ServiceError
func (e *Error) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// As extracts an *Error from an error chain, or nil
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// NewValidationError creates a validation error with a user-facing reason
func NewValidationError(reason string) *Error {
	return &Error{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    reason,
	}
}

// NewDuplicateAccountError creates the duplicate-signup error
func NewDuplicateAccountError(email string) *Error {
	return &Error{
		Category:   CategoryValidation,
		StatusCode: http.StatusConflict,
		Code:       "DUPLICATE_ACCOUNT",
		Message:    "an account with this email already exists",
		Details: map[string]interface{}{
			"email": email,
		},
	}
}

// NewNotAuthenticatedError creates the missing-user error
func NewNotAuthenticatedError() *Error {
	return &Error{
		Category:   CategoryAuth,
		StatusCode: http.StatusUnauthorized,
		Code:       "NOT_AUTHENTICATED",
		Message:    "user not authenticated",
	}
}

// NewInsufficientBalanceError carries the required vs available amounts
func NewInsufficientBalanceError(required, available int) *Error {
	return &Error{
		Category:   CategoryBalance,
		StatusCode: http.StatusPaymentRequired,
		Code:       "INSUFFICIENT_BALANCE",
		Message:    fmt.Sprintf("insufficient tokens: you need %d tokens but only have %d", required, available),
		Details: map[string]interface{}{
			"required":  required,
			"available": available,
		},
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource, id string) *Error {
	return &Error{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewStoreError wraps a key-value store failure
func NewStoreError(op, key string, cause error) *Error {
	return &Error{
		Category:   CategoryStore,
		StatusCode: http.StatusInternalServerError,
		Code:       "STORE_ERROR",
		Message:    fmt.Sprintf("store %s failed for key %s", op, key),
		Details: map[string]interface{}{
			"op":  op,
			"key": key,
		},
		Cause: cause,
	}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}
