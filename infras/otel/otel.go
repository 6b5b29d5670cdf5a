package otel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc/credentials/insecure"

	"libres/config"
)

// Otel opens spans for services, repositories and infrastructure clients.
type Otel interface {
	NewScope(ctx context.Context, scopeName, spanName string) (context.Context, Scope)
	// Shutdown flushes buffered spans to the exporter.
	Shutdown(ctx context.Context) error
}

type provider struct {
	tracers *sdktrace.TracerProvider
}

func (p *provider) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, Scope) {
	ctx, span := p.tracers.Tracer(scopeName).Start(ctx, spanName)

	return ctx, NewScope(span)
}

func (p *provider) Shutdown(ctx context.Context) error {
	if err := p.tracers.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}

	return nil
}

// New registers a global tracer provider named after the app. Spans are exported over OTLP
// gRPC when EXTERNAL_OTEL_ENDPOINT is set and dropped otherwise.
func New(cfg *config.Config) Otel {
	return NewWithOptions(cfg, exporterOptions(cfg.External.Otel.Endpoint)...)
}

// NewWithOptions is New with extra provider options, such as a span processor in tests.
func NewWithOptions(cfg *config.Config, opts ...sdktrace.TracerProviderOption) Otel {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.App.Name),
			semconv.DeploymentEnvironmentKey.String(cfg.Server.Env),
		)),
	}, opts...)

	tracers := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tracers)

	return &provider{tracers: tracers}
}

func exporterOptions(endpoint string) []sdktrace.TracerProviderOption {
	if endpoint == "" {
		log.Warn().Msg("OTEL endpoint not configured, spans will not be exported")

		return nil
	}

	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OTLP exporter")
	}

	return []sdktrace.TracerProviderOption{sdktrace.WithBatcher(exporter)}
}
