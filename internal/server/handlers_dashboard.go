package server

import (
	"net/http"

	"github.com/jonathan/matching-guru/internal/dashboard"
	"github.com/jonathan/matching-guru/internal/server/middleware"
)

// handleDashboard fetches the caller's matches and participations in one
// upstream call and returns the derived view model.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	data, err := s.client.FetchDashboard(r.Context(), principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, dashboard.Build(*data, s.now()))
}
