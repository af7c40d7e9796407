package api

import (
	"fmt"
	"net/http"

	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/types"
)

// handleTokenBalance handles GET /api/tokens/balance - Current token balance
func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.authService.RemainingTokens(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// handleDeductTokens handles POST /api/tokens/deduct - Spend tokens
func (s *Server) handleDeductTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	remaining, err := s.authService.DeductTokens(r.Context(), req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"remainingTokens": remaining})
}

// handleTopUp handles POST /api/tokens/topup - Buy tokens and announce it
// on the notification feed.
func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount        int    `json:"amount"`
		PaymentMethod string `json:"paymentMethod"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Amount must be positive", nil)
		return
	}

	balance, err := s.authService.AddTokens(r.Context(), req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	method := req.PaymentMethod
	if method == "" {
		method = "Bank"
	}

	// The purchase succeeded even if the announcement fails
	_, err = s.notifications.Add(r.Context(), types.NotificationTokenPurchase,
		"Token Purchase Successful",
		fmt.Sprintf("Added %d tokens via %s. New balance: %d tokens", req.Amount, method, balance))
	if err != nil {
		logging.Global().WithError(err).Warn("failed to record top-up notification")
	}

	respondJSON(w, http.StatusOK, map[string]int{"newBalance": balance})
}
