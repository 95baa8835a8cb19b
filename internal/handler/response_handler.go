package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/airtable"
	"formbridge/internal/auth"
	"formbridge/internal/service"
)

type ResponseHandler struct {
	svc *service.ResponseService
}

func NewResponseHandler(svc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{svc: svc}
}

// Submit accepts a public (unauthenticated) form submission.
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers map[string]any `json:"answers"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Answers == nil {
		req.Answers = map[string]any{}
	}
	result, err := h.svc.Submit(r.Context(), chi.URLParam(r, "formId"), req.Answers)
	if err != nil {
		if airtable.IsTemporary(err) {
			writeError(w, http.StatusBadGateway, "remote source unavailable, try again")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	responses, err := h.svc.List(r.Context(), chi.URLParam(r, "formId"), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}
