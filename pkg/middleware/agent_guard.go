package middleware

import (
	"fmt"
	baseHttp "net/http"
	"time"

	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/pkg/http"
	"github.com/oullin/profilesync/pkg/limiter"
)

// AgentGuard protects the agent endpoints with basic auth when credentials
// are configured. Repeated failures from one client are rate limited.
type AgentGuard struct {
	env     env.AgentEnvironment
	limiter *limiter.MemoryLimiter
}

func MakeAgentGuard(e env.AgentEnvironment) AgentGuard {
	return AgentGuard{
		env:     e,
		limiter: limiter.NewMemoryLimiter(time.Minute, 10),
	}
}

func (g AgentGuard) Handle(next http.ApiHandler) http.ApiHandler {
	return func(w baseHttp.ResponseWriter, r *baseHttp.Request) *http.ApiError {
		if !g.env.RequiresAuth() {
			return next(w, r)
		}

		if g.limiter == nil {
			return http.InternalError("agent guard has no limiter")
		}

		key := http.ClientIP(r)
		if g.limiter.TooMany(key) {
			return http.TooManyRequests("too many failed attempts")
		}

		user, pass, ok := r.BasicAuth()
		if !ok || g.env.HasInvalidCreds(user, pass) {
			g.limiter.Fail(key)
			w.Header().Set("WWW-Authenticate", `Basic realm="profilesync"`)

			return http.LogUnauthorisedError("invalid credentials", fmt.Errorf("invalid credentials from %s", key))
		}

		g.limiter.Reset(key)

		return next(w, r)
	}
}
