// Package ops serves the health and metrics endpoints.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/kuafsurvey/core/buildinfo"
	"github.com/m3rciful/kuafsurvey/core/logger"
)

// Check tests one dependency.
type Check func(ctx context.Context) error

// Options configure the ops server.
type Options struct {
	Listen string
	// Checks run on every /healthz request; the key names the dependency.
	Checks       map[string]Check
	CheckTimeout time.Duration
	// Metrics defaults to the Prometheus default gatherer.
	Metrics http.Handler
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// NewRouter creates the ops router.
func NewRouter(opts Options) http.Handler {
	r := mux.NewRouter()

	timeout := opts.CheckTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	r.HandleFunc("/healthz", healthHandler(opts.Checks, timeout)).Methods(http.MethodGet)

	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	return r
}

func healthHandler(checks map[string]Check, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Version: buildinfo.String()}
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				logger.Warn(ctx, logger.CompOps, "health.check",
					slog.String("check", name),
					slog.String("status", "error"),
					logger.Err(err),
				)
				continue
			}
			resp.Checks[name] = "ok"
		}

		code := http.StatusOK
		if resp.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Server is the ops HTTP listener.
type Server struct {
	srv *http.Server
}

// NewServer wraps the ops router in an http.Server.
func NewServer(opts Options) *Server {
	return &Server{srv: &http.Server{
		Addr:              opts.Listen,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, logger.CompOps, "listen", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info(shutdownCtx, logger.CompOps, "stopped")
	return nil
}
