package endpoint

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// Capture reports err to Sentry. Expected client-side outcomes are sent at
// info level so they stay visible without raising alerts.
func Capture(ctx context.Context, err error) {
	if err == nil {
		return
	}

	hub := sentry.CurrentHub()
	if ctx != nil {
		if fromCtx := sentry.GetHubFromContext(ctx); fromCtx != nil {
			hub = fromCtx
		}
	}

	var apiErr *ApiError
	hasApiErr := errors.As(err, &apiErr)

	hub.WithScope(func(scope *sentry.Scope) {
		level := sentry.LevelError

		if hasApiErr {
			NewScopeApiError(scope, apiErr).Enrich()
			level = getSentryLevel(apiErr.Status)
		}

		scope.SetLevel(level)
		hub.CaptureException(err)
	})
}

func getSentryLevel(status int) sentry.Level {
	switch status {
	case http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusUnprocessableEntity:
		return sentry.LevelInfo
	default:
		return sentry.LevelError
	}
}
