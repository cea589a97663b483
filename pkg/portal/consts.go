package portal

const (
	ContentTypeJSON       = "application/json"
	ContentTypeLDJSON     = "application/ld+json"
	ContentTypeMergePatch = "application/merge-patch+json"

	AcceptHeader         = "application/ld+json, application/json;q=0.9"
	AcceptEncodingHeader = "br, zstd, gzip"
)

// ---- HTTP

const AuthorizationHeader = "Authorization"
const RequestIDHeader = "X-Request-ID"
const LocaleQueryKey = "locale"

// ---- Limits

const MaxResponseBytes int64 = 10 * 1024 * 1024
