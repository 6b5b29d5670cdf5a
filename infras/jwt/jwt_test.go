package jwt_test

import (
	"context"
	"libres/config"
	"libres/infras/jwt"
	otelMocks "libres/infras/otel/mocks"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "libres"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg, otelMocks.NewOtel())
}

func TestService_GenerateAndValidate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, "7", "ayse@kutuphane.com", "member")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "ayse@kutuphane.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, jwt.AccessToken, claims.Type)
}

func TestService_ValidateTokenWrongType(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, "7", "ayse@kutuphane.com", "member")
	require.NoError(t, err)

	// the refresh secret differs, so the signature check fails first
	_, err = svc.ValidateToken(ctx, pair.AccessToken, jwt.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, "garbage", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestService_RefreshTokens(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, "3", "admin@kutuphane.com", "admin")
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, refreshed.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "3", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.RefreshTokens(ctx, pair.AccessToken)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def", want: "abc.def"},
		{name: "empty", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "lowercase scheme", header: "bearer abc", wantErr: true},
		{name: "no token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	ctx := context.Background()

	expiredCfg := &config.Config{}
	expiredCfg.App.Name = "libres"
	expiredCfg.JWT.AccessSecret = "access-secret"
	expiredCfg.JWT.RefreshSecret = "refresh-secret"
	expiredCfg.JWT.AccessExpireMin = -1
	expiredCfg.JWT.RefreshExpireMin = 60

	expired, err := jwt.New(expiredCfg, otelMocks.NewOtel()).GenerateTokenPair(ctx, "7", "ayse@kutuphane.com", "member")
	require.NoError(t, err)

	foreignCfg := *expiredCfg
	foreignCfg.App.Name = "another-app"
	foreignCfg.JWT.AccessExpireMin = 15

	foreign, err := jwt.New(&foreignCfg, otelMocks.NewOtel()).GenerateTokenPair(ctx, "7", "ayse@kutuphane.com", "member")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired.AccessToken, wantErr: jwt.ErrExpiredToken},
		{name: "other issuer", token: foreign.AccessToken, wantErr: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := newService().ValidateToken(ctx, tt.token, jwt.AccessToken)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestService_TokensAreUnique(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.GenerateTokenPair(ctx, "7", "ayse@kutuphane.com", "member")
	require.NoError(t, err)

	second, err := svc.GenerateTokenPair(ctx, "7", "ayse@kutuphane.com", "member")
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	claims, err := svc.ValidateToken(ctx, first.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}
