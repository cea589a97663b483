package endpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRunServerStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- RunServer(ctx, server.Addr, server) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatalf("server did not stop")
	}

	if err := RunServer(context.Background(), "", nil); err == nil {
		t.Fatalf("expected an error for a nil server")
	}
}

func TestServerHandlerCorsOrigins(t *testing.T) {
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	preflight := func(h http.Handler, origin string) string {
		req := httptest.NewRequest(http.MethodOptions, "/profile", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec.Header().Get("Access-Control-Allow-Origin")
	}

	local := NewServerHandler(ServerHandlerConfig{Mux: mux})
	if got := preflight(local, "http://localhost:5173"); got != "http://localhost:5173" {
		t.Fatalf("local UI origin should be allowed outside production, got %q", got)
	}

	prod := NewServerHandler(ServerHandlerConfig{Mux: mux, IsProduction: true, AllowedOrigins: []string{"https://panel.example.com"}})
	if got := preflight(prod, "http://localhost:5173"); got != "" {
		t.Fatalf("dev origin must not be allowed in production, got %q", got)
	}

	if got := preflight(prod, "https://panel.example.com"); got != "https://panel.example.com" {
		t.Fatalf("configured origin should be allowed, got %q", got)
	}

	wrapped := false
	h := NewServerHandler(ServerHandlerConfig{Mux: mux, IsProduction: true, Wrap: func(next http.Handler) http.Handler {
		wrapped = true
		return next
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !wrapped || rec.Code != http.StatusOK {
		t.Fatalf("wrap not applied")
	}
}
