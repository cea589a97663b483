package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oullin/profilesync/metal/kernel"
	"github.com/oullin/profilesync/pkg/portal"
)

var app *kernel.App

func init() {
	validate := portal.GetDefaultValidator()

	secrets, err := kernel.Ignite("./.env", validate)
	if err != nil {
		panic(err.Error())
	}

	if app, err = kernel.MakeApp(secrets, validate, kernel.AppOptions{}); err != nil {
		panic(err.Error())
	}
}

func main() {
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a failed first load is retried by the refresh job
	if err := app.RefreshProfile(ctx); err != nil {
		slog.Error("initial profile load failed", "error", err)
	}

	if err := app.Serve(ctx); err != nil {
		slog.Error("agent stopped with an error", "error", err)
		os.Exit(1)
	}
}
