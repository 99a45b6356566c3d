package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/usecase"
)

const requestTimeout = 10 * time.Second

// StatusSource exposes the relay state for GET /status.
type StatusSource interface {
	Snapshot() usecase.TrackerSnapshot
}

// Server serves liveness, relay status and Prometheus metrics.
type Server struct {
	status StatusSource
	log    *zerolog.Logger
	srv    *http.Server
}

func NewServer(port int, status StatusSource, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	s := &Server{status: status, log: &l}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the chi router with the common middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	State        string `json:"state"`
	Watermark    int64  `json:"watermark"`
	Seen         int    `json:"seen"`
	AuthFailures int    `json:"auth_failures"`
	Pending      int    `json:"pending"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.status == nil {
		http.Error(w, "status unavailable", http.StatusServiceUnavailable)
		return
	}
	snap := s.status.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		State:        string(snap.State),
		Watermark:    snap.Watermark,
		Seen:         snap.Seen,
		AuthFailures: snap.AuthFailures,
		Pending:      snap.Pending,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
