package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/auth"
	"formbridge/internal/reconcile"
	"formbridge/internal/service"
)

// NotificationProcessor runs one reconciliation pass for an inbound
// webhook notification.
type NotificationProcessor interface {
	Run(ctx context.Context, n *reconcile.Notification) (*reconcile.Stats, error)
}

type WebhookHandler struct {
	reconciler NotificationProcessor
	svc        *service.WebhookService
}

func NewWebhookHandler(reconciler NotificationProcessor, svc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, svc: svc}
}

// Notify receives Airtable's change notification. Notifications that match
// no local form are acknowledged with 200 so the sender does not retry a
// semantically empty delivery.
func (h *WebhookHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var n reconcile.Notification
	if err := readJSON(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}
	stats, err := h.reconciler.Run(r.Context(), &n)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrInvalidNotification):
			writeError(w, http.StatusBadRequest, "invalid webhook payload")
		case errors.Is(err, reconcile.ErrOwnerNotFound):
			writeError(w, http.StatusNotFound, "user not found for webhook")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process webhook")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "webhook processed",
		"stats":   stats,
	})
}

func (h *WebhookHandler) Enable(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if err := h.svc.Enable(r.Context(), chi.URLParam(r, "formId"), claims.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "webhook enabled"})
}

func (h *WebhookHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	cursor, err := h.svc.Refresh(r.Context(), chi.URLParam(r, "formId"), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "webhook refreshed",
		"cursor":  cursor,
	})
}
