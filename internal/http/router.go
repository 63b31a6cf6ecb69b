// Package http assembles the public router. Each vertical registers its own
// routes; this package only owns the cross-cutting middleware and the
// operational endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"karigari/internal/platform/middleware"
	"karigari/internal/platform/redis"
)

// Registrar is any vertical handler that can attach its routes.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the full route tree.
func NewRouter(logger *slog.Logger, cache *redis.Client, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	for _, h := range handlers {
		h.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cache != nil {
			if err := cache.Health(req.Context()); err != nil {
				logger.Warn("health check degraded", "component", "redis", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
