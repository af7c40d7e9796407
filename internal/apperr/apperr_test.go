package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	plain := NewValidationError("email is required")
	assert.Equal(t, "VALIDATION_ERROR: email is required", plain.Error())

	cause := errors.New("connection refused")
	wrapped := NewStoreError("get", "tbase_user_auth", cause)
	assert.Contains(t, wrapped.Error(), "STORE_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.ErrorIs(t, wrapped, cause)
}

func TestAs(t *testing.T) {
	t.Run("extracts a categorized error", func(t *testing.T) {
		err := NewNotAuthenticatedError()
		got := As(err)
		require.NotNil(t, got)
		assert.Equal(t, CategoryAuth, got.Category)
		assert.Equal(t, http.StatusUnauthorized, got.StatusCode)
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("handling request: %w", NewNotFoundError("tip", "abc"))
		got := As(err)
		require.NotNil(t, got)
		assert.Equal(t, "NOT_FOUND", got.Code)
	})

	t.Run("returns nil for plain errors", func(t *testing.T) {
		assert.Nil(t, As(errors.New("boom")))
		assert.Nil(t, As(nil))
	})
}

func TestConstructors(t *testing.T) {
	dup := NewDuplicateAccountError("alice@example.com")
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
	assert.Equal(t, "alice@example.com", dup.Details["email"])

	bal := NewInsufficientBalanceError(5, 3)
	assert.Equal(t, http.StatusPaymentRequired, bal.StatusCode)
	assert.Equal(t, 5, bal.Details["required"])
	assert.Equal(t, 3, bal.Details["available"])

	svcErr := bal.ToServiceError()
	assert.Equal(t, "INSUFFICIENT_BALANCE", svcErr.Code)
	assert.Equal(t, bal.Message, svcErr.Message)
}
