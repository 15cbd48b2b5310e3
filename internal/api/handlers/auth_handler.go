package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/govichain/engine/internal/api/types"
	"github.com/govichain/engine/internal/api/validators"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/services"
)

type AuthHandler struct {
	auth     services.AuthService
	tokenTTL time.Duration
}

func NewAuthHandler(auth services.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.auth.Register(r.Context(), &services.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	token, u, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: types.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(h.tokenTTL.Seconds()),
			User:        u,
		},
	})
}
