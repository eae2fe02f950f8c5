package http

import (
	"net/http"

	"github.com/livepoll/api/internal/core/ports"
)

type DashboardHandler struct {
	service ports.AnalyticsService
}

func NewDashboardHandler(service ports.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// GetDashboard godoc
// @Summary      Returns aggregate statistics for the authenticated creator's polls
// @Tags         dashboard
// @Success      200
// @Failure      401
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	stats, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
