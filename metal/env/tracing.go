package env

import (
	"log/slog"
	"strings"
)

const defaultTracingEndpoint = "http://localhost:4318"

type TracingEnvironment struct {
	Enabled  bool
	Endpoint string `validate:"omitempty,required_if=Enabled true,url"`
}

func NewTracingEnvironment() TracingEnvironment {
	enabled := strings.EqualFold(GetEnvVar("ENV_TRACING_ENABLED"), "true")
	endpoint := GetEnvVar("ENV_TRACING_OTLP_ENDPOINT")

	if enabled && endpoint == "" {
		endpoint = defaultTracingEndpoint
		slog.Warn("tracing enabled without ENV_TRACING_OTLP_ENDPOINT, using default", "endpoint", endpoint)
	}

	return TracingEnvironment{
		Enabled:  enabled,
		Endpoint: endpoint,
	}
}
