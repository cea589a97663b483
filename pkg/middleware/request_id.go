package middleware

import (
	"context"
	baseHttp "net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/oullin/profilesync/pkg/http"
)

// RequestID echoes the caller's X-Request-ID or assigns a new one and
// stores it in the request context.
type RequestID struct{}

func (RequestID) Handle(next http.ApiHandler) http.ApiHandler {
	return func(w baseHttp.ResponseWriter, r *baseHttp.Request) *http.ApiError {
		id := strings.TrimSpace(r.Header.Get(http.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(http.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), http.RequestIDKey, id)

		return next(w, r.WithContext(ctx))
	}
}
