package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/govichain/engine/internal/api/middleware"
	"github.com/govichain/engine/internal/api/types"
	"github.com/govichain/engine/internal/api/validators"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/services"
)

type MilestonesHandler struct {
	milestones services.MilestoneService
}

func NewMilestonesHandler(milestones services.MilestoneService) *MilestonesHandler {
	return &MilestonesHandler{milestones: milestones}
}

func (h *MilestonesHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	var req types.MilestoneCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.milestones.CreateMilestone(r.Context(), caller, &services.CreateMilestoneInput{
		ProjectID:       req.ProjectID,
		Title:           req.Title,
		Description:     req.Description,
		RequestedAmount: req.RequestedAmount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: m})
}

func (h *MilestonesHandler) MyMilestones(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	items, err := h.milestones.ListForCaller(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{Total: int64(len(items))},
	})
}

func (h *MilestonesHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.MilestoneStatus(r.URL.Query().Get("status"))
	items, err := h.milestones.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{Total: int64(len(items))},
	})
}

func (h *MilestonesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.milestones.GetMilestone(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: m})
}

func (h *MilestonesHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.milestones.ListByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{Total: int64(len(items))},
	})
}

func (h *MilestonesHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

func (h *MilestonesHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *MilestonesHandler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var m *models.Milestone
	if approve {
		m, err = h.milestones.Approve(r.Context(), caller, id)
	} else {
		m, err = h.milestones.Flag(r.Context(), caller, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: m})
}
