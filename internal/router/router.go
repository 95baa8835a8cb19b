package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/auth"
	"formbridge/internal/handler"
	mw "formbridge/internal/middleware"
)

func New(
	jwtSecret string,
	frontendURL string,
	authH *handler.AuthHandler,
	airtableH *handler.AirtableHandler,
	formH *handler.FormHandler,
	respH *handler.ResponseHandler,
	webhookH *handler.WebhookHandler,
	dashH *handler.DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(frontendURL))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/auth/airtable/url", authH.AuthorizeURL)
		r.Post("/auth/airtable/callback", authH.Callback)
		r.Get("/forms/{formId}", formH.Get)
		r.Post("/responses/{formId}", respH.Submit)
		r.Post("/webhooks/airtable", webhookH.Notify)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			// Auth
			r.Get("/auth/me", authH.Me)

			// Dashboard
			r.Get("/dashboard", dashH.Dashboard)

			// Airtable schema
			r.Get("/airtable/bases", airtableH.Bases)
			r.Get("/airtable/bases/{baseId}/tables", airtableH.Tables)

			// Forms
			r.Get("/forms", formH.List)
			r.Post("/forms", formH.Create)
			r.Put("/forms/{formId}", formH.Update)
			r.Delete("/forms/{formId}", formH.Delete)

			// Responses
			r.Get("/responses/{formId}", respH.List)

			// Webhook lifecycle
			r.Post("/webhooks/enable/{formId}", webhookH.Enable)
			r.Post("/webhooks/refresh/{formId}", webhookH.Refresh)
		})
	})

	return r
}
