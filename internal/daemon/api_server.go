package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"recall/internal/api"
	"recall/internal/config"
	"recall/internal/logging"
)

type apiServer struct {
	bind   string
	logger *slog.Logger

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	handler := api.NewServer(cfg, api.Dependencies{
		Intake:   d.intake,
		Statuses: d.registry,
		Store:    d.store,
		Health:   d.Health,
	}, logger).Handler()

	return &apiServer{
		bind:   strings.TrimSpace(cfg.API.Bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "api_server_failed"),
			)
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}
