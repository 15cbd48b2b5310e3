package handlers

import (
	"net/http"

	"github.com/govichain/engine/internal/api/middleware"
	"github.com/govichain/engine/internal/api/types"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
)

type UsersHandler struct {
	users repository.UserRepository
}

func NewUsersHandler(users repository.UserRepository) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	var u models.User
	if err := h.users.GetByID(r.Context(), caller.UserID, &u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: u})
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    users,
		Meta:    &types.Meta{Total: int64(len(users))},
	})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var u models.User
	if err := h.users.GetByID(r.Context(), id, &u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: u})
}
