package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tipbase-server/internal/apperr"
)

func TestRespondServiceError(t *testing.T) {
	t.Run("categorized errors keep their status and code", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondServiceError(w, apperr.NewNotFoundError("tip", "abc"))

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("wrapped categorized errors are unwrapped", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondServiceError(w, fmt.Errorf("listing tips: %w", apperr.NewNotAuthenticatedError()))

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp ErrorResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "NOT_AUTHENTICATED", resp.Error.Code)
	})

	t.Run("plain errors become internal errors without leaking the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondServiceError(w, errors.New("dial tcp: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp ErrorResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, ErrCodeInternalError, resp.Error.Code)
		assert.Equal(t, "An internal error occurred", resp.Error.Message)
		assert.NotContains(t, resp.Error.Message, "connection refused")
	})
}
