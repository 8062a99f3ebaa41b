package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Triage/internal/broker"
)

const (
	ServiceName    = "triage"
	ServiceVersion = "1.0"
)

func NewRouter(b *broker.Broker, adminToken string, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(rateLimit))

	assign := NewAssignHandler(b, logger)
	admin := NewAdminHandler(b)

	r.Get("/health", Health)

	r.Route("/ai", func(r chi.Router) {
		r.Post("/assign", assign.Assign)
		r.Post("/recommend-batch", assign.RecommendBatch)
		r.Post("/cri-only", assign.CRIOnly)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(AdminAuthMiddleware(adminToken))
		r.Get("/engineers", admin.Engineers)
		r.Post("/artifacts/rebuild", admin.Rebuild)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", Health)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}
