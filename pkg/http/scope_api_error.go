package http

import (
	"fmt"
	baseHttp "net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/oullin/profilesync/pkg/endpoint"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDOf prefers the id stored by the request id middleware and falls
// back to the inbound header.
func RequestIDOf(r *baseHttp.Request) string {
	if r == nil {
		return ""
	}

	if id, ok := r.Context().Value(RequestIDKey).(string); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}

	return strings.TrimSpace(r.Header.Get(RequestIDHeader))
}

func enrichScope(scope *sentry.Scope, r *baseHttp.Request, apiErr *ApiError) {
	if scope == nil || r == nil || apiErr == nil {
		return
	}

	scope.SetRequest(r)
	scope.SetTag("agent.route", r.Method+" "+r.URL.Path)
	scope.SetExtra("api_error_status_text", baseHttp.StatusText(apiErr.Status))
	scope.SetExtra("api_error_message", apiErr.Message)

	if id := RequestIDOf(r); id != "" {
		scope.SetTag("http.request_id", id)
	}

	if ip := ClientIP(r); ip != "" {
		scope.SetExtra("http_client_ip", ip)
	}

	if apiErr.Data != nil {
		scope.SetExtra("api_error_data", apiErr.Data)
	}

	if apiErr.Err != nil {
		scope.SetTag("api.error.cause_type", fmt.Sprintf("%T", apiErr.Err))
		scope.SetExtra("api_error_cause_chain", endpoint.ErrorChain(apiErr.Err))
	}
}
