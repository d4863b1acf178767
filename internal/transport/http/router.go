// Package httptransport assembles the HTTP surface: middleware chain, module
// routers, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventhub/internal/platform/metrics"
	"eventhub/internal/platform/middleware"
)

// Registrar is implemented by module handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Health   *HealthHandler
	Handlers []Registrar
}

// NewRouter wires the middleware chain and mounts every module router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Actor)
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", deps.Health.HandleLiveness)
	r.Get("/readyz", deps.Health.HandleReadiness)
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range deps.Handlers {
		h.Register(r)
	}
	return r
}
