package endpoint

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

type ScopeApiError struct {
	scope  *sentry.Scope
	apiErr *ApiError
}

func NewScopeApiError(scope *sentry.Scope, apiErr *ApiError) *ScopeApiError {
	return &ScopeApiError{scope: scope, apiErr: apiErr}
}

func (s *ScopeApiError) Enrich() {
	if s == nil || s.scope == nil || s.apiErr == nil {
		return
	}

	s.scope.SetTag("api.error.kind", s.apiErr.Kind().String())
	s.scope.SetExtra("api_error_status_text", http.StatusText(s.apiErr.Status))
	s.scope.SetExtra("api_error_message", s.apiErr.Message)
	s.scope.SetExtra("api_request", s.apiErr.Method+" "+s.apiErr.Path)

	if s.apiErr.RequestID != "" {
		s.scope.SetTag("http.request_id", s.apiErr.RequestID)
	}

	if s.apiErr.Data != nil {
		s.scope.SetExtra("api_error_data", s.apiErr.Data)
	}

	if s.apiErr.Err != nil {
		s.scope.SetTag("api.error.cause_type", fmt.Sprintf("%T", s.apiErr.Err))
		s.scope.SetExtra("api_error_cause_chain", ErrorChain(s.apiErr.Err))
	}
}

// ErrorChain lists the messages of err and every error it wraps, outermost first.
func ErrorChain(err error) []string {
	chain := make([]string, 0, 4)

	for current := err; current != nil; current = errors.Unwrap(current) {
		chain = append(chain, current.Error())
	}

	return chain
}
