package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/govichain/engine/internal/api/middleware"
	"github.com/govichain/engine/internal/api/types"
	"github.com/govichain/engine/internal/api/validators"
	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/services"
	appErr "github.com/govichain/engine/pkg/errors"
)

type ProjectsHandler struct {
	projects services.ProjectService
}

func NewProjectsHandler(projects services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	var req types.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.projects.CreateProject(r.Context(), caller, &services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: p})
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.ProjectStatus(r.URL.Query().Get("status"))
	items, err := h.projects.ListProjects(r.Context(), status)
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

func (h *ProjectsHandler) MyProjects(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if err := identity.RequireRole(caller, models.RoleGovernment); err != nil {
		writeError(w, err)
		return
	}
	items, err := h.projects.ListByOwner(r.Context(), caller.UserID)
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

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.projects.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

func (h *ProjectsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req types.ProjectStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.projects.UpdateStatus(r.Context(), caller, id, models.ProjectStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.projects.DeleteProject(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	prog, err := h.projects.ComputeProgress(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: prog})
}

// pathID parses a uint path parameter.
func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, appErr.Newf(appErr.CodeInvalid, "invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, types.StatusForError(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}
