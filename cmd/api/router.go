package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/FACorreiaa/sales-dashboard/pkg/middleware"
	"github.com/FACorreiaa/sales-dashboard/pkg/storage"
)

// NewRouter assembles the HTTP routes and the middleware stack
func NewRouter(d *Dependencies) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Observability.MetricsEnabled {
		r.Use(middleware.Metrics(d.Metrics))
	}

	r.Get("/health", healthHandler(d.FileStorage, d.Logger))

	if cfg.Observability.MetricsEnabled {
		r.Method(http.MethodGet, cfg.Observability.MetricsPath, d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
		r.Use(middleware.RateLimit(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst))
		d.DashboardHandler.Routes(r)
	})

	return r
}

type healthResponse struct {
	Status    string `json:"status"`
	Workbooks int    `json:"workbooks"`
}

// healthHandler reports whether the workbook directory can be listed
func healthHandler(st storage.Storage, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		files, err := st.List(r.Context())
		if err != nil {
			logger.Warn("health check failed", slog.Any("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(healthResponse{Status: "unavailable"})
			return
		}
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Workbooks: len(files)})
	}
}
