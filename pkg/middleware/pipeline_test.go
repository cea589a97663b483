package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/oullin/profilesync/pkg/http"
)

func TestPipelineChainOrder(t *testing.T) {
	p := Pipeline{}

	order := []string{}

	m1 := func(next pkghttp.ApiHandler) pkghttp.ApiHandler {
		return func(w http.ResponseWriter, r *http.Request) *pkghttp.ApiError {
			order = append(order, "m1")

			return next(w, r)
		}
	}

	m2 := func(next pkghttp.ApiHandler) pkghttp.ApiHandler {
		return func(w http.ResponseWriter, r *http.Request) *pkghttp.ApiError {
			order = append(order, "m2")

			return next(w, r)
		}
	}

	final := func(w http.ResponseWriter, r *http.Request) *pkghttp.ApiError {
		order = append(order, "final")

		return nil
	}

	chained := p.Chain(final, m1, m2)
	chained(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if joined := strings.Join(order, ","); joined != "m1,m2,final" {
		t.Fatalf("order wrong: %s", joined)
	}
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	var seen string

	h := RequestID{}.Handle(func(w http.ResponseWriter, r *http.Request) *pkghttp.ApiError {
		seen, _ = r.Context().Value(pkghttp.RequestIDKey).(string)

		return nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(pkghttp.RequestIDHeader, "abc")

	h(rec, req)

	if seen != "abc" || rec.Header().Get(pkghttp.RequestIDHeader) != "abc" {
		t.Fatalf("request id not echoed: %q %q", seen, rec.Header().Get(pkghttp.RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/", nil))

	if seen == "" || seen == "abc" || rec.Header().Get(pkghttp.RequestIDHeader) != seen {
		t.Fatalf("request id not generated: %q", seen)
	}
}
