// Package web hosts the daemon's HTTP listener: a chi router behind a stdlib
// http.Server with the middleware chain and response envelope the ops
// endpoints share
package web

import (
	"context"
	stderrs "errors"
	"net/http"
	"time"

	"github.com/SamMeown/ETL/internal/platform/config"
	"github.com/SamMeown/ETL/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns one listener and drains it when the process context ends
type Server struct {
	addr  string
	grace time.Duration
	mux   *chi.Mux
	srv   *http.Server
}

// NewServer builds the listener from env: OPS_ADDR picks the address and
// OPS_SHUTDOWN_GRACE bounds the drain on shutdown
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("OPS_ADDR", ":4000")
	mux := chi.NewRouter()
	return &Server{
		addr:  addr,
		grace: cfg.MayDuration("OPS_SHUTDOWN_GRACE", 5*time.Second),
		mux:   mux,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router exposes the mux for mounting routes and middleware
func (s *Server) Router() chi.Router { return s.mux }

// Addr returns the configured listen address
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is canceled, then drains in-flight requests within
// the grace window. A listen failure returns immediately
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("web")

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrs.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.srv.Shutdown(shCtx); err != nil {
		return err
	}
	log.Info().Msg("listener drained")
	return nil
}
