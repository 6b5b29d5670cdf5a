package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"libres/config"
	otelMocks "libres/infras/otel/mocks"
	"libres/permissions"
	"libres/shared/constant"
	transport "libres/transport/http"
	"libres/transport/http/middleware"
	"libres/transport/http/router"
)

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error {
	return p.err
}

func newServer(env string, db transport.Pinger) *transport.HTTP {
	cfg := &config.Config{}
	cfg.Server.Env = env

	tracer := otelMocks.NewOtel()

	return &transport.HTTP{
		Config:         cfg,
		Router:         router.New(router.DomainHandlers{}),
		AppMiddleware:  middleware.NewAppMiddleware(tracer, cfg, nil),
		AuthMiddleware: middleware.NewAuthRoleMiddleware(nil, tracer, permissions.Get(), cfg),
		Database:       db,
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         transport.Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "database reachable", db: pinger{}, wantStatus: http.StatusOK, wantBody: `{"message":"OK"}`},
		{name: "database down", db: pinger{err: errors.New("connection refused")}, wantStatus: http.StatusServiceUnavailable, wantBody: `{"message":"` + constant.ResponseErrorUnhealthy + `"}`},
		{name: "no database configured", wantStatus: http.StatusOK, wantBody: `{"message":"OK"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(constant.ServerEnvDevelopment, tt.db)

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(constant.RequestHeaderRequestID))
			assert.Equal(t, transport.ServerStateReady, server.State())
		})
	}
}

func TestSwaggerHiddenInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(constant.ServerEnvProduction, pinger{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
