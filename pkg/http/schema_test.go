package http

import (
	"errors"
	"fmt"
	baseHttp "net/http"
	"testing"
)

func TestApiErrorMessageAndCause(t *testing.T) {
	cause := errors.New("profile store is empty")
	e := &ApiError{Message: "profile not loaded", Status: baseHttp.StatusNotFound, Err: cause}

	if e.Error() != "profile not loaded" {
		t.Fatalf("unexpected message %q", e.Error())
	}

	if !errors.Is(fmt.Errorf("agent: %w", e), cause) {
		t.Fatalf("expected the cause to be reachable through wrapping")
	}

	var target *ApiError
	if !errors.As(fmt.Errorf("agent: %w", e), &target) || target.Status != baseHttp.StatusNotFound {
		t.Fatalf("expected errors.As to recover the api error")
	}
}

func TestNilApiErrorIsSafe(t *testing.T) {
	var e *ApiError

	if e.Error() != "Internal Server Error" || e.Unwrap() != nil {
		t.Fatalf("nil api error must degrade to a generic message")
	}
}
