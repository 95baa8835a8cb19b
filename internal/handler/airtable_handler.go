package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/auth"
	"formbridge/internal/service"
)

// AirtableHandler serves base/table schema for the builder UI.
type AirtableHandler struct {
	svc *service.MetaService
}

func NewAirtableHandler(svc *service.MetaService) *AirtableHandler {
	return &AirtableHandler{svc: svc}
}

func (h *AirtableHandler) Bases(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	bases, err := h.svc.Bases(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bases)
}

func (h *AirtableHandler) Tables(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	baseID := chi.URLParam(r, "baseId")
	tables, err := h.svc.Tables(r.Context(), claims.UserID, baseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}
