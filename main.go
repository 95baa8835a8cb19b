package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"formbridge/internal/airtable"
	"formbridge/internal/config"
	"formbridge/internal/db"
	"formbridge/internal/gelf"
	"formbridge/internal/handler"
	"formbridge/internal/pkce"
	"formbridge/internal/reconcile"
	"formbridge/internal/repository"
	"formbridge/internal/router"
	"formbridge/internal/service"
)

func main() {
	cfg := config.Load()

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr)
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	// Connect to MongoDB
	client, err := db.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	database := client.Database(cfg.MongoDB)
	log.Printf("Connected to MongoDB (%s)", cfg.MongoDB)

	// Repositories
	userRepo := repository.NewUserRepo(database)
	formRepo := repository.NewFormRepo(database)
	respRepo := repository.NewResponseRepo(database)

	// PKCE store: redis when configured (multi-instance), in-process otherwise.
	var pkceStore pkce.Store
	if cfg.RedisAddr != "" {
		pkceStore = pkce.NewRedisStore(cfg.RedisAddr)
		log.Printf("PKCE store: redis (%s)", cfg.RedisAddr)
	} else {
		pkceStore = pkce.NewMemoryStore()
	}
	defer pkceStore.Close()

	remoteTimeout := time.Duration(cfg.RemoteTimeoutSeconds) * time.Second
	newClient := func(token string) *airtable.Client {
		return airtable.NewClient(token, remoteTimeout)
	}
	oauthCfg := airtable.OAuthConfig{
		ClientID:     cfg.AirtableClientID,
		ClientSecret: cfg.AirtableClientSecret,
		RedirectURI:  cfg.AirtableRedirectURI,
	}

	// Services
	authSvc := service.NewAuthService(userRepo, pkceStore, oauthCfg, newClient, cfg.JWTSecret)
	formSvc := service.NewFormService(formRepo, userRepo, newClient, cfg.BackendURL)
	respSvc := service.NewResponseService(respRepo, formRepo, userRepo, newClient)
	metaSvc := service.NewMetaService(userRepo, newClient)
	webhookSvc := service.NewWebhookService(formRepo, userRepo, newClient)
	reconciler := reconcile.NewReconciler(formRepo, userRepo, respRepo,
		func(token string) reconcile.PayloadSource { return newClient(token) })

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	airtableH := handler.NewAirtableHandler(metaSvc)
	formH := handler.NewFormHandler(formSvc)
	respH := handler.NewResponseHandler(respSvc)
	webhookH := handler.NewWebhookHandler(reconciler, webhookSvc)
	dashH := handler.NewDashboardHandler(formRepo, respRepo)

	// Router
	r := router.New(cfg.JWTSecret, cfg.FrontendURL, authH, airtableH, formH, respH, webhookH, dashH)

	// Index creation runs in background so startup isn't blocked.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		for _, e := range []struct {
			name string
			fn   func(context.Context) error
		}{
			{"user", userRepo.EnsureIndexes},
			{"form", formRepo.EnsureIndexes},
			{"response", respRepo.EnsureIndexes},
		} {
			if err := e.fn(ctx); err != nil {
				log.Printf("Warning: %s index creation failed: %v", e.name, err)
			}
		}
		log.Printf("Background init: indexes ready")
	}()

	log.Printf("formbridge server starting on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
