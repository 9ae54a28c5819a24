package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"inkrelay-backend/internal/middleware"
	"inkrelay-backend/internal/observability"
)

// RouterConfig wires handlers and cross-cutting concerns into the
// router.
type RouterConfig struct {
	Handwriting *HandwritingHandler
	Subscribe   *SubscribeHandler
	Metrics     *observability.Collector
	Logger      *zap.Logger

	ServiceToken string
	EnableCORS   bool

	// ObjectHandler serves stored documents in local development; nil
	// when a real object store handles public URLs.
	ObjectHandler http.Handler
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics(cfg.Metrics))

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", Health)
	router.Get("/metrics", cfg.Metrics.Handler().ServeHTTP)

	router.Route("/v1", func(r chi.Router) {
		// Subscribing is read-only and unauthenticated; the submission
		// path carries the service token.
		r.Get("/sessions/{sessionID}/subscribe", cfg.Subscribe.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(cfg.ServiceToken))
			r.Use(middleware.Timeout(15*time.Second, cfg.Logger))
			r.Post("/handwriting", cfg.Handwriting.Submit)
		})
	})

	if cfg.ObjectHandler != nil {
		router.Mount("/objects", http.StripPrefix("/objects", cfg.ObjectHandler))
	}

	return router
}
