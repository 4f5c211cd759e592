package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/subject-quiz/internal/config"
	"github.com/gokatarajesh/subject-quiz/internal/logging"
)

// RouteRegistrar mounts a group of handlers on the mux.
type RouteRegistrar interface {
	Register(mux *http.ServeMux)
}

// NewHTTPServer wires base routes (health, metrics, WebSocket) plus the given API route groups.
// wsHandler may be nil, in which case /ws/session answers 501.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, wsHandler http.HandlerFunc, routes ...RouteRegistrar) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewMux(logger, gatherer, wsHandler, routes...),
	}
}

// NewMux builds the handler tree without binding an address.
func NewMux(logger zerolog.Logger, gatherer prometheus.Gatherer, wsHandler http.HandlerFunc, routes ...RouteRegistrar) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if wsHandler != nil {
		mux.HandleFunc("GET /ws/session", wsHandler)
	} else {
		mux.HandleFunc("GET /ws/session", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "WebSocket handler not configured", http.StatusNotImplemented)
		})
	}

	for _, r := range routes {
		r.Register(mux)
	}

	return withLogger(mux, logger)
}

// withLogger attaches the request-scoped logger to every request context.
func withLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}
