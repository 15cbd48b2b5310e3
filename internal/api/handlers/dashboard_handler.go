package handlers

import (
	"net/http"

	"github.com/govichain/engine/internal/api/middleware"
	"github.com/govichain/engine/internal/api/types"
	"github.com/govichain/engine/internal/services"
)

type DashboardHandler struct {
	dashboard services.DashboardService
}

func NewDashboardHandler(dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.GlobalStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: stats})
}

func (h *DashboardHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	stats, err := h.dashboard.MyStats(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: stats})
}
