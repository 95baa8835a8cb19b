package handler

import (
	"net/http"

	"formbridge/internal/auth"
	"formbridge/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) AuthorizeURL(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.AuthorizationURL(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate OAuth URL")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" || req.State == "" {
		writeError(w, http.StatusBadRequest, "authorization code and state are required")
		return
	}
	result, err := h.svc.Callback(r.Context(), req.Code, req.State)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
