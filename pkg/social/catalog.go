package social

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/oullin/profilesync/pkg/portal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type kind int

const (
	handleKind kind = iota
	phoneKind
	linkKind
	emailKind
)

// Network describes how one social network handle is validated, stored
// and turned into a link.
type Network struct {
	Key      string
	Label    string
	kind     kind
	pattern  *regexp.Regexp
	prefixes []string
	link     string
}

var catalog = []Network{
	handle("instagram", `^[A-Za-z0-9._]{1,30}$`, "https://instagram.com/%s", "instagram.com/", "www.instagram.com/"),
	handle("telegram", `^[A-Za-z0-9_]{5,32}$`, "https://t.me/%s", "t.me/", "telegram.me/"),
	phone("whatsapp", "https://wa.me/%s", "wa.me/"),
	handle("facebook", `^[A-Za-z0-9.]{5,50}$`, "https://facebook.com/%s", "facebook.com/", "www.facebook.com/", "fb.com/"),
	handle("vk", `^[A-Za-z0-9_.]{2,32}$`, "https://vk.com/%s", "vk.com/", "m.vk.com/"),
	handle("youtube", `^[A-Za-z0-9._-]{3,30}$`, "https://youtube.com/@%s", "youtube.com/", "www.youtube.com/"),
	{Key: "site", kind: linkKind},
	phone("viber", "viber://chat?number=%%2B%s"),
	phone("imo", "https://imo.im/%s"),
	handle("twitter", `^[A-Za-z0-9_]{1,15}$`, "https://x.com/%s", "twitter.com/", "x.com/"),
	handle("linkedin", `^[A-Za-z0-9-]{3,100}$`, "https://linkedin.com/in/%s", "linkedin.com/in/", "www.linkedin.com/in/"),
	{Key: "google", kind: emailKind, pattern: regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`), link: "mailto:%s"},
	handle("wechat", `^[A-Za-z][-_A-Za-z0-9]{5,19}$`, "weixin://dl/chat?%s"),
}

func handle(key, pattern, link string, prefixes ...string) Network {
	return Network{
		Key:      key,
		kind:     handleKind,
		pattern:  regexp.MustCompile(pattern),
		prefixes: prefixes,
		link:     link,
	}
}

func phone(key, link string, prefixes ...string) Network {
	return Network{
		Key:      key,
		kind:     phoneKind,
		pattern:  regexp.MustCompile(`^\d{10,15}$`),
		prefixes: prefixes,
		link:     link,
	}
}

func Lookup(key string) (Network, bool) {
	key = strings.ToLower(strings.TrimSpace(key))

	idx := slices.IndexFunc(catalog, func(n Network) bool {
		return n.Key == key
	})

	if idx < 0 {
		return Network{}, false
	}

	network := catalog[idx]
	network.Label = cases.Title(language.English).String(network.Key)

	return network, true
}

func Keys() []string {
	keys := make([]string, 0, len(catalog))

	for _, network := range catalog {
		keys = append(keys, network.Key)
	}

	return keys
}

// Format turns raw user input (a handle, "@handle" or a pasted profile
// link) into the canonical stored handle.
func (n Network) Format(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	switch n.kind {
	case linkKind:
		return formatLink(value)
	case emailKind:
		return strings.ToLower(value)
	}

	value = stripScheme(value)

	for _, prefix := range n.prefixes {
		if strings.HasPrefix(strings.ToLower(value), prefix) {
			value = value[len(prefix):]
			break
		}
	}

	if idx := strings.IndexAny(value, "?#"); idx >= 0 {
		value = value[:idx]
	}

	value = strings.Trim(value, "/")
	value = strings.TrimPrefix(value, "@")

	if n.kind == phoneKind {
		return digits(value)
	}

	return value
}

func (n Network) Valid(handle string) bool {
	if handle == "" {
		return false
	}

	if n.kind == linkKind {
		parsed, err := url.Parse(handle)

		return err == nil && parsed.Scheme == "https" && strings.Contains(parsed.Hostname(), ".")
	}

	return n.pattern != nil && n.pattern.MatchString(handle)
}

func (n Network) URL(handle string) string {
	if handle == "" {
		return ""
	}

	if n.kind == linkKind {
		return handle
	}

	return fmt.Sprintf(n.link, handle)
}

// Prepare formats and validates raw input. An empty input is accepted and
// means "present but unset".
func Prepare(key, raw string) (string, error) {
	network, ok := Lookup(key)
	if !ok {
		return "", fmt.Errorf("social: unknown network %q", key)
	}

	handle := network.Format(raw)
	if handle == "" {
		return "", nil
	}

	if !network.Valid(handle) {
		return "", fmt.Errorf("social: %q is not a valid %s handle", raw, network.Key)
	}

	return handle, nil
}

func stripScheme(value string) string {
	lower := strings.ToLower(value)

	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			return value[len(scheme):]
		}
	}

	return value
}

func formatLink(value string) string {
	if clean := portal.SanitiseURL(value); clean != "" {
		return clean
	}

	return value
}

func digits(value string) string {
	var b strings.Builder

	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
