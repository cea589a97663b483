package endpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
)

const ShutdownTimeout = 10 * time.Second

// localUIOrigin is the dev server of the profile UI that reads the agent.
const localUIOrigin = "http://localhost:5173"

// RunServer serves until ctx is cancelled and then drains in-flight requests.
// Callers derive ctx from signal.NotifyContext.
func RunServer(ctx context.Context, addr string, server *http.Server) error {
	if server == nil {
		return errors.New("nil http server")
	}

	served := make(chan error, 1)
	go func() {
		served <- server.ListenAndServe()
	}()

	slog.Info("agent listening", "address", addr)

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("listen and serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("graceful shutdown timed out, forcing close", "address", addr)
		err = server.Close()
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown %s: %w", addr, err)
	}

	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve %s: %w", addr, err)
	}

	slog.Info("agent stopped", "address", addr)

	return nil
}

// ServerHandlerConfig describes the agent's local HTTP surface.
type ServerHandlerConfig struct {
	Mux            http.Handler
	IsProduction   bool
	AllowedOrigins []string
	Wrap           func(http.Handler) http.Handler
}

// NewServerHandler applies CORS for the configured UI origins, adding the
// local dev origin outside production, then the optional Wrap.
func NewServerHandler(cfg ServerHandlerConfig) http.Handler {
	if cfg.Mux == nil {
		return http.NotFoundHandler()
	}

	origins := cfg.AllowedOrigins
	if !cfg.IsProduction {
		origins = append([]string{localUIOrigin}, origins...)
	}

	handler := cfg.Mux

	if len(origins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match", "X-Request-ID"},
			ExposedHeaders:   []string{"ETag", "X-Request-ID"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	if cfg.Wrap != nil {
		handler = cfg.Wrap(handler)
	}

	return handler
}
