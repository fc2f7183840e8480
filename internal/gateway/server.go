package gateway

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/flipt-io/flipt-engine-go/engine"
)

// NewRouter builds the chi router fronting the engine: health check, CORS,
// request-id/recover/timeout middleware, and an optional bearer-auth gate.
func NewRouter(eng *engine.Engine, authSecret string, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := NewEvaluationHandler(eng, logger)
	auth := NewTokenAuthenticator(authSecret)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireBearerToken)
		r.Post("/evaluate/variant", h.EvaluateVariant)
		r.Post("/evaluate/boolean", h.EvaluateBoolean)
		r.Post("/evaluate/batch", h.EvaluateBatch)
	})

	return r
}
