// Package web serves the reports as JSON over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/huangsam/sitpulse/core"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// reportRoutes maps API paths to the report they serve.
var reportRoutes = map[string]schema.ReportKind{
	"/api/growth":  schema.GrowthReport,
	"/api/sitters": schema.SitterOnboardingReport,
	"/api/owners":  schema.OwnerOnboardingReport,
	"/api/health":  schema.NetworkHealthReport,
}

// Server answers report requests from one loaded pipeline.
type Server struct {
	pipeline *core.Pipeline
	mgr      contract.CacheManager
	user     string
	password string
	logger   *zap.Logger
}

// NewServer builds a server over p. Basic auth is enforced when user or password is set.
func NewServer(p *core.Pipeline, mgr contract.CacheManager, user, password string) *Server {
	return &Server{
		pipeline: p,
		mgr:      mgr,
		user:     user,
		password: password,
		logger:   contract.Logger().Named("web"),
	}
}

// Handler returns the routed handler with request logging and, when configured, basic auth.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	for path, kind := range reportRoutes {
		api.HandleFunc("GET "+path, s.handleReport(kind))
	}
	api.HandleFunc("GET /api/countries", s.handleCountries)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("/api/", s.basicAuth(api))
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errChan
	}
}

// Serve loads the tables once and serves the API on cfg.ServeAddr until ctx is canceled.
func Serve(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := core.LoadPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	return NewServer(p, mgr, cfg.ServeUser, cfg.ServePassword).ListenAndServe(ctx, cfg.ServeAddr)
}
