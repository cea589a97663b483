package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	baseHttp "net/http"
	"strings"
)

const MaxRequestSize = 1 << 20 // 1MB limit

func ParseRequestBody[T any](r *baseHttp.Request) (T, error) {
	var request T

	defer func() {
		if issue := r.Body.Close(); issue != nil {
			slog.Error("ParseRequestBody: " + issue.Error())
		}
	}()

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestSize))
	if err != nil {
		return request, fmt.Errorf("failed to read the given request body: %w", err)
	}

	if len(data) == 0 {
		return request, nil
	}

	if err = json.Unmarshal(data, &request); err != nil {
		return request, fmt.Errorf("failed to unmarshal the given request body: %w", err)
	}

	return request, nil
}

// ClientIP prefers the first forwarded address over the peer address.
func ClientIP(r *baseHttp.Request) string {
	if r == nil {
		return ""
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}

	return host
}
