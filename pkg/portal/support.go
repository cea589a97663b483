package portal

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// FilterNonEmpty trims every value and drops the blank ones.
func FilterNonEmpty(values []string) []string {
	var out []string

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// SanitiseURL upgrades a link to https and strips credentials and fragments.
// Links with another scheme, or whose host cannot be public, come back empty.
func SanitiseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if idx := strings.Index(raw, "://"); idx < 0 || strings.ContainsAny(raw[:idx], "/?#") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if scheme := strings.ToLower(parsed.Scheme); scheme != "http" && scheme != "https" {
		return ""
	}

	host := parsed.Hostname()
	if host == "" || (host != "localhost" && !strings.Contains(host, ".") && net.ParseIP(host) == nil) {
		return ""
	}

	parsed.Scheme = "https"
	parsed.User = nil
	parsed.Fragment = ""

	return parsed.String()
}

func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}

	if err := c.Close(); err != nil {
		slog.Error("failed to close resource", "err", err)
	}
}

// RouteOf collapses numeric path segments so metrics labels stay bounded.
func RouteOf(path string) string {
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}

	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/{id}$1")
	}

	return path
}

// ReadCapped reads the whole body unless it is larger than limit bytes.
func ReadCapped(reader io.Reader, limit int64) ([]byte, error) {
	if reader == nil {
		return nil, io.ErrUnexpectedEOF
	}

	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}

	return data, nil
}
