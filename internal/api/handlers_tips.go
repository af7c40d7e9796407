package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/types"
)

// handleListTips handles GET /api/tips - Newest first
func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
	tips, err := s.tipsService.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tips":  tips,
		"total": len(tips),
	})
}

// handleGetTip handles GET /api/tips/:id
func (s *Server) handleGetTip(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	tip, err := s.tipsService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if tip == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Tip not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, tip)
}

// handleGenerateTip handles POST /api/tips/generate. The tip cost is
// deducted before generating; a failed deduction blocks generation.
func (s *Server) handleGenerateTip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filters models.TipFilters `json:"filters"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	remaining, err := s.authService.DeductTokens(r.Context(), s.config.TipCost)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	tip, err := s.tipsService.Generate(r.Context(), req.Filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	_, err = s.notifications.Add(r.Context(), types.NotificationTipGeneration,
		"Tips Generation Successful",
		fmt.Sprintf("Generated %d fixtures! %d tokens remaining.", len(tip.Fixtures), remaining))
	if err != nil {
		logging.Global().WithError(err).Warn("failed to record tip generation notification")
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"tip":             tip,
		"remainingTokens": remaining,
	})
}

// handleDeleteTip handles DELETE /api/tips/:id. Deleting an unknown id is
// a no-op.
func (s *Server) handleDeleteTip(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.tipsService.Delete(r.Context(), vars["id"]); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleClearTips handles DELETE /api/tips
func (s *Server) handleClearTips(w http.ResponseWriter, r *http.Request) {
	if err := s.tipsService.ClearAll(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleAssignTipster handles POST /api/tips/:id/assign
func (s *Server) handleAssignTipster(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tipID := vars["id"]

	var req struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Rating float64 `json:"rating"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Tipster name is required", nil)
		return
	}

	tipster := models.Tipster{ID: req.ID, Name: req.Name, Rating: req.Rating}
	if err := s.tipsService.AssignTipster(r.Context(), tipID, tipster); err != nil {
		respondServiceError(w, err)
		return
	}

	_, err := s.notifications.Add(r.Context(), types.NotificationTipAssigned,
		"New tip assignment",
		fmt.Sprintf("Tip assigned to %s (ID: %s). Tipster will review fixtures.", tipster.Name, tipID))
	if err != nil {
		logging.Global().WithError(err).Warn("failed to record tip assignment notification")
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleReviewTip handles POST /api/tips/:id/review. With per-fixture
// comments only the listed fixtures receive them; without, every fixture
// gets a default insight line.
func (s *Server) handleReviewTip(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tipID := vars["id"]

	var req struct {
		Tipster struct {
			ID     string  `json:"id"`
			Name   string  `json:"name"`
			Rating float64 `json:"rating"`
		} `json:"tipster"`
		Comments map[string]string `json:"comments"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Tipster.Name == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Tipster name is required", nil)
		return
	}

	tipster := models.Tipster{ID: req.Tipster.ID, Name: req.Tipster.Name, Rating: req.Tipster.Rating}

	var err error
	if len(req.Comments) > 0 {
		err = s.tipsService.AddReviewWithComments(r.Context(), tipID, tipster, req.Comments)
	} else {
		err = s.tipsService.AddReview(r.Context(), tipID, tipster, nil)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	_, err = s.notifications.Add(r.Context(), types.NotificationTipsterResults,
		"Tipster results are in",
		fmt.Sprintf("%s reviewed your tip (ID: %s) and added comments to fixtures.", tipster.Name, tipID))
	if err != nil {
		logging.Global().WithError(err).Warn("failed to record review notification")
	}

	respondJSON(w, http.StatusNoContent, nil)
}
