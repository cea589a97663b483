package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oullin/profilesync/handler"
	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/pkg/middleware"
	"github.com/oullin/profilesync/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
)

func newRouter(agent env.AgentEnvironment) *Router {
	view := handler.MakeProfileView(handler.ProfileViewConfig{Store: store.New()})

	r := &Router{
		Mux: http.NewServeMux(),
		Pipeline: middleware.Pipeline{
			Guard: middleware.MakeAgentGuard(agent),
		},
		Agent: handler.MakeAgentHandler(view, nil, prometheus.NewRegistry()),
	}

	r.Boot()

	return r
}

func TestHealthIsPublic(t *testing.T) {
	r := newRouter(env.AgentEnvironment{Username: "operator", Password: "0123456789abcdef"})

	rec := httptest.NewRecorder()
	r.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("unexpected health response %d %v", rec.Code, rec.Header())
	}
}

func TestProfileRoutesAreGuarded(t *testing.T) {
	r := newRouter(env.AgentEnvironment{Username: "operator", Password: "0123456789abcdef"})

	rec := httptest.NewRecorder()
	r.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.SetBasicAuth("operator", "0123456789abcdef")

	rec = httptest.NewRecorder()
	r.Mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unloaded profile, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	r := newRouter(env.AgentEnvironment{})

	rec := httptest.NewRecorder()
	r.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics, got %d", rec.Code)
	}
}
