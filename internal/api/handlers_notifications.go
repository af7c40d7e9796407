package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleListNotifications handles GET /api/notifications - Newest first
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	feed, err := s.notifications.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": feed,
		"total":         len(feed),
	})
}

// handleUnreadCount handles GET /api/notifications/unread-count
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.notifications.UnreadCount(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

// handleMarkRead handles POST /api/notifications/:id/read. Marking an
// unknown id is a no-op, not an error.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Notification ID required", nil)
		return
	}

	if err := s.notifications.MarkRead(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleMarkAllRead handles POST /api/notifications/read-all
func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkAllRead(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleClearNotifications handles DELETE /api/notifications
func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.ClearAll(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
