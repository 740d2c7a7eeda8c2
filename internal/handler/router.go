// Package handler provides the HTTP API for Courier.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/repository"
)

// Router assembles the HTTP surface of the server.
type Router struct {
	accountHandler *AccountHandler
	messageHandler *MessageHandler
	metrics        *Metrics
	metricsPath    string
	db             repository.DatabaseHealth
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AccountHandler *AccountHandler
	MessageHandler *MessageHandler
	Metrics        *Metrics // nil disables the metrics endpoint
	MetricsPath    string   // defaults to /metrics
	DB             repository.DatabaseHealth
	Logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	metricsPath := config.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Router{
		accountHandler: config.AccountHandler,
		messageHandler: config.MessageHandler,
		metrics:        config.Metrics,
		metricsPath:    metricsPath,
		db:             config.DB,
		logger:         config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger(rt.logger))
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}

	r.Get("/health", rt.handleHealth)
	if rt.metrics != nil {
		r.Method(http.MethodGet, rt.metricsPath, rt.metrics.Handler())
	}

	rt.accountHandler.RegisterRoutes(r)
	rt.messageHandler.RegisterRoutes(r)

	return r
}

// handleHealth reports server and database health.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.db != nil {
		if err := rt.db.Ping(r.Context()); err != nil {
			rt.logger.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
