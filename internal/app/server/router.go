package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"netpay/internal/domain/audit"
	"netpay/internal/domain/auth"
	"netpay/internal/domain/tax"
	"netpay/internal/platform/config"
	"netpay/internal/platform/metrics"
	audithandler "netpay/internal/transport/http/handlers/audit"
	authhandler "netpay/internal/transport/http/handlers/auth"
	calculatorhandler "netpay/internal/transport/http/handlers/calculator"
	ratetablehandler "netpay/internal/transport/http/handlers/ratetables"
	"netpay/internal/transport/http/middleware"
)

// Deps is everything the router needs. Storage-backed fields are nil when no database is
// configured, and the matching routes degrade or are not mounted.
type Deps struct {
	Config     config.Config
	Engine     *tax.Engine
	Clients    auth.Clients
	Metrics    *metrics.Collector
	Audit      audit.Recorder
	AuditStore audithandler.Store
	RateTables ratetablehandler.Store
	Ready      func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger)
	if d.Metrics != nil {
		router.Use(middleware.Metrics(d.Metrics))
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if d.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(d.Clients, cfg.JWTSecret, cfg.TokenTTL)
		authHandler.RegisterRoutes(r)

		calculatorHandler := calculatorhandler.NewHandler(d.Engine, d.Audit, d.Metrics, cfg.AuthRequired)
		calculatorHandler.RegisterRoutes(r)

		rateTableHandler := ratetablehandler.NewHandler(d.Engine.Table(), d.RateTables, cfg.AuthRequired)
		rateTableHandler.RegisterRoutes(r)

		if d.AuditStore != nil {
			auditHandler := audithandler.NewHandler(d.AuditStore)
			auditHandler.RegisterRoutes(r)
		}
	})

	return router
}
