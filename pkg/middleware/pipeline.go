package middleware

import "github.com/oullin/profilesync/pkg/http"

type Pipeline struct {
	Guard     AgentGuard
	RequestID RequestID
}

// Chain applies handlers to h; the first one listed runs first.
func (m Pipeline) Chain(h http.ApiHandler, handlers ...http.Middleware) http.ApiHandler {
	for i := len(handlers) - 1; i >= 0; i-- {
		h = handlers[i](h)
	}

	return h
}
