package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/api"
	"github.com/handrades/Luppa-PLC-sub003/internal/api/handlers"
	"github.com/handrades/Luppa-PLC-sub003/internal/api/middleware"
	"github.com/handrades/Luppa-PLC-sub003/internal/metrics"
)

type RouterConfig struct {
	SearchHandler *handlers.SearchHandler
	Logger        *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1024 * 1024

	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(metrics.Middleware())
	r.Use(middleware.MaxBodyBytes(maxBodyBytes, cfg.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/search", func(r chi.Router) {
		r.Get("/", cfg.SearchHandler.Search)
		r.Get("/suggestions", cfg.SearchHandler.Suggestions)
		r.Post("/refresh", cfg.SearchHandler.RefreshView)
		r.Get("/metrics", cfg.SearchHandler.Metrics)
	})

	return r
}
