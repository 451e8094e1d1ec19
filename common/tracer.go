package common

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"paidpiper.com/nonce-gateway/config"
	"paidpiper.com/nonce-gateway/log"
)

// InitGlobalTracer installs an OTLP/HTTP exporting provider. A nil config
// leaves the global no-op provider in place.
func InitGlobalTracer(cfg *config.TracingConfig) func() {
	if cfg == nil {
		return func() {}
	}
	ctx := context.Background()

	endpoint, path, insecure := parseEndpoint(cfg.Endpoint)
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithURLPath(path),
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		log.Errorf("Could not create OTLP exporter: %v", err)
		return func() {}
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)),
	)
	if err != nil {
		log.Errorf("Could not create trace resource: %v", err)
		res = resource.Default()
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
	log.Infof("Tracing initialized for %s, exporting to %s%s", cfg.ServiceName, endpoint, path)

	return func() {
		if err := provider.Shutdown(ctx); err != nil {
			log.Errorf("Tracer provider shutdown failed: %v", err)
		}
	}
}

func CreateTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// parseEndpoint accepts a full url or a host:port pair.
func parseEndpoint(raw string) (endpoint, path string, insecure bool) {
	endpoint, path, insecure = "localhost:4318", "/v1/traces", true
	if raw == "" {
		return
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		endpoint = raw
		return
	}
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	if u.Host != "" {
		endpoint = u.Host
	}
	if u.Path != "" {
		path = u.Path
	}
	insecure = u.Scheme == "http"
	return
}
