package handler

import (
	"net/http"

	"formbridge/internal/auth"
	"formbridge/internal/repository"
)

// DashboardHandler aggregates per-form counts for the builder's landing
// page.
type DashboardHandler struct {
	forms     *repository.FormRepo
	responses *repository.ResponseRepo
}

func NewDashboardHandler(forms *repository.FormRepo, responses *repository.ResponseRepo) *DashboardHandler {
	return &DashboardHandler{forms: forms, responses: responses}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())

	forms, err := h.forms.FindByOwner(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type formStats struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Responses int64  `json:"responses"`
		WebhookID string `json:"webhookId,omitempty"`
	}
	stats := make([]formStats, 0, len(forms))
	var total int64
	for i := range forms {
		n, err := h.responses.CountByFormID(r.Context(), forms[i].ID.Hex())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		total += n
		stats = append(stats, formStats{
			ID:        forms[i].ID.Hex(),
			Title:     forms[i].Title,
			Responses: n,
			WebhookID: forms[i].WebhookID,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalForms":     len(forms),
		"totalResponses": total,
		"forms":          stats,
	})
}
