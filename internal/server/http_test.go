package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/subject-quiz/internal/config"
	"github.com/gokatarajesh/subject-quiz/internal/logging"
)

type pingRoutes struct{}

func (pingRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromContext(r.Context())
		logger.Info().Msg("ping")
		_, _ = w.Write([]byte("pong"))
	})
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMuxBaseRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_hits_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := NewMux(zerolog.Nop(), reg, nil, pingRoutes{})

	rec := serve(h, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_hits_total 1")

	rec = serve(h, http.MethodGet, "/ws/session")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = serve(h, http.MethodGet, "/v1/ping")
	assert.Equal(t, "pong", rec.Body.String())

	rec = serve(h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewHTTPServerUsesConfiguredAddr(t *testing.T) {
	cfg := &config.App{HTTPAddr: "127.0.0.1:9999"}
	srv := NewHTTPServer(cfg, zerolog.Nop(), prometheus.NewRegistry(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	assert.Equal(t, "127.0.0.1:9999", srv.Addr)
	assert.Equal(t, http.StatusTeapot, serve(srv.Handler, http.MethodGet, "/ws/session").Code)
}
