package kernel

import (
	"context"
	"log/slog"
	baseHttp "net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oullin/profilesync/database"
	"github.com/oullin/profilesync/database/repository"
	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/metal/router"
	"github.com/oullin/profilesync/pkg/endpoint"
	"github.com/oullin/profilesync/pkg/store"
)

var runServer = endpoint.RunServer

func endpointHandler(mux baseHttp.Handler, e *env.Environment, wrap func(baseHttp.Handler) baseHttp.Handler) baseHttp.Handler {
	return endpoint.NewServerHandler(endpoint.ServerHandlerConfig{
		Mux:            mux,
		IsProduction:   e.App.IsProduction(),
		AllowedOrigins: e.Agent.AllowedOrigins,
		Wrap:           wrap,
	})
}

func (a *App) SetRouter(router router.Router) {
	a.router = &router
}

// Close releases every resource in reverse order of creation.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.session != nil && a.session.Authenticated() {
		if err := a.session.Logout(ctx); err != nil {
			slog.Warn("could not sign out", "error", err)
		}
	}

	if err := a.tracer.Shutdown(); err != nil {
		slog.Error("could not stop tracing", "error", err)
	}

	if a.sentry != nil {
		sentry.Flush(2 * time.Second)
	}

	a.CloseDB()
	a.CloseLogs()
}

func (a *App) CloseLogs() {
	if a.logs == nil {
		return
	}

	a.logs.Close()
}

func (a *App) CloseDB() {
	if a.db == nil {
		return
	}

	a.db.Close()
}

func (a *App) IsLocal() bool {
	return a.env.App.IsLocal()
}

func (a *App) IsProduction() bool {
	return a.env.App.IsProduction()
}

func (a *App) GetEnv() *env.Environment {
	return a.env
}

func (a *App) GetDB() *database.Connection {
	return a.db
}

func (a *App) GetSnapshots() repository.Snapshots {
	return a.snapshots
}

func (a *App) GetStore() *store.Store {
	return a.store
}

func (a *App) GetHandlers() Handlers {
	return a.handlers
}

func (a *App) GetMux() *baseHttp.ServeMux {
	if a.router == nil {
		return nil
	}

	return a.router.Mux
}
