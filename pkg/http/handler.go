package http

import (
	"encoding/json"
	"log/slog"
	baseHttp "net/http"

	"github.com/getsentry/sentry-go"
)

// MakeApiHandler adapts an ApiHandler to net/http. A returned error is
// reported to sentry and written as a JSON ErrorResponse.
func MakeApiHandler(fn ApiHandler) baseHttp.HandlerFunc {
	return func(w baseHttp.ResponseWriter, r *baseHttp.Request) {
		apiErr := fn(w, r)
		if apiErr == nil {
			return
		}

		slog.Error("agent request failed", "path", r.URL.Path, "status", apiErr.Status, "message", apiErr.Message, "request_id", RequestIDOf(r))
		captureApiError(r, apiErr)

		writeError(w, apiErr)
	}
}

func writeError(w baseHttp.ResponseWriter, apiErr *ApiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)

	body := ErrorResponse{Error: apiErr.Message, Status: apiErr.Status, Data: apiErr.Data}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode error response", "error", err)
	}
}

func captureApiError(r *baseHttp.Request, apiErr *ApiError) {
	if apiErr == nil {
		return
	}

	errToCapture := error(apiErr)
	if apiErr.Err != nil {
		errToCapture = apiErr.Err
	}

	notify := func(hub *sentry.Hub) {
		hub.WithScope(func(scope *sentry.Scope) {
			enrichScope(scope, r, apiErr)

			scope.SetLevel(getSentryLevel(apiErr.Status))

			hub.CaptureException(errToCapture)
		})
	}

	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		notify(hub)
		return
	}

	notify(sentry.CurrentHub())
}

// Expected client errors stay visible at info level without raising alerts.
func getSentryLevel(status int) sentry.Level {
	switch status {
	case baseHttp.StatusUnauthorized,
		baseHttp.StatusForbidden,
		baseHttp.StatusNotFound,
		baseHttp.StatusTooManyRequests:
		return sentry.LevelInfo
	default:
		return sentry.LevelError
	}
}
