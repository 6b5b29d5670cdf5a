package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"libres/config"
	"libres/infras/jwt"
	jwtMocks "libres/infras/jwt/mocks"
	"libres/infras/otel/mocks"
	"libres/internal/domains/auth/model/dto"
	"libres/internal/domains/auth/service"
	userMocks "libres/internal/domains/user/mocks"
	userModel "libres/internal/domains/user/model"
	userDto "libres/internal/domains/user/model/dto"
	userServiceMocks "libres/internal/domains/user/service/mocks"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	gModel "libres/shared/model"
	"libres/shared/timezone"
)

// "password" hashed with bcrypt.
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

var validUser = userModel.User{
	ID:       12,
	Name:     "Test User",
	Email:    "test@example.com",
	Password: passwordHash,
	Role:     constant.RoleMember,
	Active:   true,
	Metadata: gModel.NewMetadata("system", timezone.Now()),
}

func newService(t *testing.T) (service.Auth, *userMocks.MockUser, *userServiceMocks.MockUser, *jwtMocks.MockJWT) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockUserService := userServiceMocks.NewMockUser(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	svc := service.New(mockUserRepo, mockUserService, &config.Config{}, mocks.NewOtel(), mockJWT)

	return svc, mockUserRepo, mockUserService, mockJWT
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(users *userServiceMocks.MockUser)
		wantCode  int
	}{
		{
			name: "member created",
			setupMock: func(users *userServiceMocks.MockUser) {
				users.EXPECT().
					Create(gomock.Any(), userDto.CreateUserRequest{Name: "Ayla", Email: "ayla@example.com", Password: "password123"}, constant.RoleMember).
					Return(int64(3), nil)
			},
		},
		{
			name: "email taken",
			setupMock: func(users *userServiceMocks.MockUser) {
				users.EXPECT().
					Create(gomock.Any(), gomock.Any(), constant.RoleMember).
					Return(int64(0), failure.Conflict("email already registered"))
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, users, _ := newService(t)
			tt.setupMock(users)

			id, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "Ayla", Email: "ayla@example.com", Password: "password123"})

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, int64(3), id)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tokens := &jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(repo *userMocks.MockUser, jwtService *jwtMocks.MockJWT)
		wantCode  int
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "Test@Example.com", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, jwtService *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				jwtService.EXPECT().
					GenerateTokenPair(gomock.Any(), "12", validUser.Email, constant.RoleMember).
					Return(tokens, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, columns map[string]any, _ gDto.FilterGroup) error {
						assert.Contains(t, columns, "last_login")
						assert.Equal(t, validUser.Email, columns["modified_by"])

						return nil
					})
			},
		},
		{
			name: "last login failure does not block login",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, jwtService *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				jwtService.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tokens, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("update error"))
			},
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@example.com", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "wrongpassword"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "inactive user",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				inactive := validUser
				inactive.Active = false

				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "token generation error",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, jwtService *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				jwtService.EXPECT().
					GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("token generation failed"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "database error",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("connection refused"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, jwtService := newService(t)
			tt.setupMock(repo, jwtService)

			result, err := svc.Login(context.Background(), tt.req)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "access-token", result.AccessToken)
			assert.Equal(t, "refresh-token", result.RefreshToken)
			assert.Equal(t, int64(12), result.User.ID)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		setupMock func(jwtService *jwtMocks.MockJWT)
		wantErr   bool
	}{
		{
			name:  "successful token refresh",
			token: "valid-refresh-token",
			setupMock: func(jwtService *jwtMocks.MockJWT) {
				jwtService.EXPECT().
					RefreshTokens(gomock.Any(), "valid-refresh-token").
					Return(&jwt.TokenPair{AccessToken: "new-access-token", RefreshToken: "new-refresh-token"}, nil)
			},
		},
		{
			name:  "invalid refresh token",
			token: "invalid-refresh-token",
			setupMock: func(jwtService *jwtMocks.MockJWT) {
				jwtService.EXPECT().
					RefreshTokens(gomock.Any(), "invalid-refresh-token").
					Return(nil, errors.New("invalid token"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, jwtService := newService(t)
			tt.setupMock(jwtService)

			result, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: tt.token})

			if tt.wantErr {
				assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "new-access-token", result.AccessToken)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.ChangePasswordRequest
		setupMock func(repo *userMocks.MockUser)
		wantCode  int
	}{
		{
			name: "password changed",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "new-password-123"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
						hashed, _ := fields[userModel.FieldPassword].(string)
						assert.NotEqual(t, "new-password-123", hashed)
						assert.NotEmpty(t, hashed)

						return nil
					})
			},
		},
		{
			name: "user missing",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "new-password-123"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "current password wrong",
			req:  dto.ChangePasswordRequest{CurrentPassword: "not-it", NewPassword: "new-password-123"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "update error",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "new-password-123"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newService(t)
			tt.setupMock(repo)

			err := svc.ChangePassword(context.Background(), tt.req, 12)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}
