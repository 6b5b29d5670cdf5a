package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"libres/config"
	"libres/infras/jwt"
	"libres/infras/otel"
	"libres/permissions"
	"libres/shared/constant"
	"libres/shared/failure"
	"libres/transport/http/response"
)

// trustedCallerKey marks requests that presented the internal API key.
type trustedCallerKey struct{}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole is the APIKey -> Auth -> RBAC chain guarding /v1.
type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

// APIKey lets internal callers bypass token and role checks. A wrong key is rejected
// outright; no key at all falls through to Auth.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		key := r.Header.Get(constant.RequestHeaderAPIKey)
		if key == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttribute("http.source", "internal")

		if key != m.cfg.App.APIKey {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(w, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), trustedCallerKey{}, true)))
	})
}

// Auth resolves the bearer token into the caller's id, email, role and token id. Routes
// marked skip in permissions.json are public.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		route, perm := m.lookup(r)
		if trusted(ctx) || perm.Skip {
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       route,
			"http.method":     r.Method,
		})

		claims, err := m.claims(ctx, r.Header.Get(constant.RequestHeaderAuthorization))
		if err != nil {
			scope.TraceError(err)
			response.WithError(w, err)

			return
		}

		ctx = r.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RBAC admits the caller when the route lists no roles or lists the caller's role.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if trusted(ctx) {
			next.ServeHTTP(w, r)

			return
		}

		if m.permission == nil {
			response.WithError(w, failure.ForbiddenError)

			return
		}

		_, perm := m.lookup(r)
		if m.permission.Skip || perm.Skip || len(perm.Roles) == 0 {
			next.ServeHTTP(w, r)

			return
		}

		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
		if !slices.Contains(perm.Roles, role) {
			scope.SetAttributes(map[string]any{
				"user_role":     role,
				"allowed_roles": perm.Roles,
				"reason":        "role_not_allowed",
			})
			scope.TraceError(failure.ForbiddenError)
			response.WithError(w, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// lookup resolves the chi route pattern for r and its permission entry.
func (m *authRoleImpl) lookup(r *http.Request) (string, permissions.Permission) {
	var route string

	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.Routes != nil {
		route = rctx.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path)
	}

	if m.permission == nil {
		return route, permissions.Permission{}
	}

	return route, m.permission.FindPermissions(route, r.Method)
}

func (m *authRoleImpl) claims(ctx context.Context, header string) (*jwt.Claims, error) {
	if header == "" {
		return nil, failure.Unauthorized("Missing authorization header") //nolint:wrapcheck
	}

	token, err := jwt.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, failure.Unauthorized("Invalid authorization header format") //nolint:wrapcheck
	}

	claims, err := m.jwtService.ValidateToken(ctx, token, jwt.AccessToken)

	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return nil, failure.Unauthorized("Token has expired") //nolint:wrapcheck
	case errors.Is(err, jwt.ErrInvalidToken):
		return nil, failure.Unauthorized("Invalid token") //nolint:wrapcheck
	case errors.Is(err, jwt.ErrInvalidClaim):
		return nil, failure.Unauthorized("Invalid token claims") //nolint:wrapcheck
	case err != nil:
		return nil, failure.Unauthorized("Token validation failed") //nolint:wrapcheck
	}

	if claims.UserID == "" || claims.Email == "" {
		log.Error().Str("user_id", claims.UserID).Msg("JWT claims missing user id or email")

		return nil, failure.Unauthorized("Invalid token claims") //nolint:wrapcheck
	}

	return claims, nil
}

func trusted(ctx context.Context) bool {
	ok, _ := ctx.Value(trustedCallerKey{}).(bool)

	return ok
}
