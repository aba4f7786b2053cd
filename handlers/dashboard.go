package handlers

import (
	"net/http"
	"strings"
)

// HandleUserDashboard serves GET /users/{id}/dashboard.
func (h *Handler) HandleUserDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if userID(r.Context()) == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	target, found := strings.CutSuffix(rest, "/dashboard")
	if !found || target == "" || strings.Contains(target, "/") {
		sendError(w, "user id is required", http.StatusBadRequest)
		return
	}

	dashboard, err := h.Engine.Dashboard(r.Context(), target)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	sendJSON(w, dashboard, http.StatusOK)
}
