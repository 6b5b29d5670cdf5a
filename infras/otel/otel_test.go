package otel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"libres/config"
	"libres/infras/otel"
)

func TestNewWithOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Name = "libres"
	cfg.Server.Env = "staging"

	recorder := tracetest.NewSpanRecorder()
	tracer := otel.NewWithOptions(cfg, sdktrace.WithSpanProcessor(recorder))

	ctx, scope := tracer.NewScope(context.Background(), "service", "service.reservation.Create")
	_, child := tracer.NewScope(ctx, "repository", "repository.reservation.Insert")
	child.End()
	scope.End()

	require.NoError(t, tracer.Shutdown(context.Background()))

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	insert, create := ended[0], ended[1]
	assert.Equal(t, "repository.reservation.Insert", insert.Name())
	assert.Equal(t, create.SpanContext().SpanID(), insert.Parent().SpanID())
	assert.Equal(t, "repository", insert.InstrumentationScope().Name)

	service, ok := create.Resource().Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "libres", service.AsString())

	env, ok := create.Resource().Set().Value("deployment.environment")
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())
}
