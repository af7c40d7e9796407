package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tipbase-server/internal/grid"
	"github.com/tipbase-server/internal/models"
)

// handleListUsers handles GET /api/users - Server-side paginated search
// over the user directory.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	pageIndex, _ := strconv.Atoi(query.Get("pageIndex"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	page, err := s.directory.Search(r.Context(), query.Get("search"), pageIndex, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// handleDeleteUser handles DELETE /api/users/:id
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.directory.Delete(r.Context(), vars["id"]); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// directoryColumns defines the exportable user directory columns
func directoryColumns() []grid.Column[*models.DirectoryUser] {
	return []grid.Column[*models.DirectoryUser]{
		{ID: "name", Header: "Name", Value: func(u *models.DirectoryUser) interface{} { return u.Name }, Sortable: true, CanHide: true},
		{ID: "email", Header: "Email", Value: func(u *models.DirectoryUser) interface{} { return u.Email }, Sortable: true, CanHide: true},
		{ID: "role", Header: "Role", Value: func(u *models.DirectoryUser) interface{} { return u.Role }, Sortable: true, CanHide: true},
		{ID: "status", Header: "Status", Value: func(u *models.DirectoryUser) interface{} { return u.Status }, Sortable: true, CanHide: true},
		{ID: "joinedDate", Header: "Joined Date", Value: func(u *models.DirectoryUser) interface{} { return u.JoinedDate }, Sortable: true, CanHide: true},
		{ID: "twoFactorAuth", Header: "Two-Factor Auth", Value: func(u *models.DirectoryUser) interface{} { return u.TwoFactorAuth }, Sortable: true, CanHide: true},
		{ID: "loginType", Header: "Login Type", Value: func(u *models.DirectoryUser) interface{} { return u.LoginType }, Sortable: true, CanHide: true},
	}
}

// handleExportUsers handles GET /api/users/export?format=csv|excel|html|text|print
func (s *Server) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	format := grid.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = grid.FormatCSV
	}
	if !format.Valid() {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Unsupported export format", nil)
		return
	}

	users, err := s.directory.All(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	g, err := grid.New(r.Context(), grid.Config[*models.DirectoryUser]{
		Columns: directoryColumns(),
		RowID:   func(u *models.DirectoryUser) string { return u.ID },
	}, users)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to build export", nil)
		return
	}

	data, err := g.Export(format, "Users")
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to build export", nil)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=users-export.%s", format.Extension()))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
