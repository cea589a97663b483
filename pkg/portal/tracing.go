package portal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oullin/profilesync/metal/env"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const tracerShutdownTimeout = 5 * time.Second

// TracerProvider owns the OTLP pipeline. Provider is nil when tracing is
// disabled and the global no-op provider stays in place.
type TracerProvider struct {
	Provider *sdktrace.TracerProvider
}

// NewTracerProvider exports spans over OTLP/HTTP to the configured endpoint.
// Spans started by the API client and the reconciler carry the service
// attributes below.
func NewTracerProvider(e *env.Environment) (*TracerProvider, error) {
	if !e.Tracing.Enabled {
		slog.Info("tracing disabled")

		return &TracerProvider{}, nil
	}

	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(e.Tracing.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", e.App.Name),
		attribute.String("deployment.environment", e.App.Type),
		attribute.String("profile.api", e.Api.BaseURL),
		attribute.String("profile.subject", e.Api.Subject),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("tracing enabled", "endpoint", e.Tracing.Endpoint)

	return &TracerProvider{Provider: provider}, nil
}

func (tp *TracerProvider) Shutdown() error {
	if tp == nil || tp.Provider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()

	if err := tp.Provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}

	return nil
}
