package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"libres/config"
	"libres/infras/otel/mocks"
	userMocks "libres/internal/domains/user/mocks"
	"libres/internal/domains/user/model"
	"libres/internal/domains/user/model/dto"
	"libres/internal/domains/user/service"
	"libres/shared/cache/cachetest"
	cacheMocks "libres/shared/cache/mocks"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	gModel "libres/shared/model"
	"libres/shared/timezone"
)

func newService(t *testing.T) (service.User, *userMocks.MockUser, *cacheMocks.MockRedisCache, *cachetest.Clears) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	clears := cachetest.NewClears()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).DoAndReturn(clears.Clear).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache, clears
}

func adminContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, "root@kutuphane.com")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)
}

func TestUserService_Create(t *testing.T) {
	req := dto.CreateUserRequest{Name: "Ayşe Yılmaz", Email: "Ayse@Kutuphane.com", Password: "password123"}

	tests := []struct {
		name      string
		role      string
		setupMock func(repo *userMocks.MockUser)
		wantID    int64
		wantCode  int
	}{
		{
			name: "member created",
			role: constant.RoleMember,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user model.User) (int64, error) {
						assert.Equal(t, "ayse@kutuphane.com", user.Email)
						assert.Equal(t, constant.RoleMember, user.Role)
						assert.True(t, user.Active)
						assert.NotEqual(t, req.Password, user.Password)

						return 11, nil
					})
			},
			wantID: 11,
		},
		{
			name: "admin created",
			role: constant.RoleAdmin,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user model.User) (int64, error) {
						assert.Equal(t, constant.RoleAdmin, user.Role)

						return 12, nil
					})
			},
			wantID: 12,
		},
		{
			name: "email taken",
			role: constant.RoleMember,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "insert error",
			role: constant.RoleMember,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, clears := newService(t)
			tt.setupMock(repo)

			id, err := svc.Create(adminContext(), req, tt.role)

			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			clears.Wait(t, "user:gets*", "user:count*")
		})
	}
}

func TestUserService_Get(t *testing.T) {
	user := model.User{
		ID:       5,
		Name:     "Mehmet Demir",
		Email:    "mehmet@kutuphane.com",
		Role:     constant.RoleMember,
		Active:   true,
		Metadata: gModel.NewMetadata(constant.ContextSystem, timezone.Now()),
	}

	tests := []struct {
		name      string
		setupMock func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache)
		wantCode  int
	}{
		{
			name: "cache miss, found in db",
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "user:get:5", gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
		},
		{
			name: "cache hit",
			setupMock: func(_ *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "user:get:5", gomock.Any()).Return(nil)
			},
		},
		{
			name: "not found",
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cache, _ := newService(t)
			tt.setupMock(repo, cache)

			res, err := svc.Get(context.Background(), 5)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)

			if res.ID != 0 {
				assert.Equal(t, user.Email, res.Email)
				assert.Nil(t, res.LastLogin)
			}
		})
	}
}

func TestUserService_GetAll(t *testing.T) {
	svc, repo, cache, _ := newService(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}
	users := []model.User{{ID: 1, Name: "Root", Email: "root@kutuphane.com", Role: constant.RoleAdmin}}

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return(users, nil)

	res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
	assert.Len(t, res.Users, 1)
}

func TestUserService_Update(t *testing.T) {
	name := "Ayşe Kaya"
	email := "AYSE.KAYA@kutuphane.com"

	tests := []struct {
		name      string
		req       dto.UpdateUserRequest
		setupMock func(repo *userMocks.MockUser)
		wantCode  int
	}{
		{
			name:      "empty request",
			req:       dto.UpdateUserRequest{},
			setupMock: func(_ *userMocks.MockUser) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "user not found",
			req:  dto.UpdateUserRequest{Name: &name},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "email used by someone else",
			req:  dto.UpdateUserRequest{Email: &email},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "updated",
			req:  dto.UpdateUserRequest{Name: &name, Email: &email},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, "ayse.kaya@kutuphane.com", fields[model.FieldEmail])
						assert.Equal(t, "root@kutuphane.com", fields[constant.FieldModifiedBy])

						return nil
					})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, clears := newService(t)
			tt.setupMock(repo)

			err := svc.Update(adminContext(), tt.req, 7)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			clears.Wait(t, "user:count*")
		})
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	member := model.User{ID: 7, Role: constant.RoleMember}

	tests := []struct {
		name      string
		role      string
		setupMock func(repo *userMocks.MockUser)
		wantCode  int
	}{
		{
			name: "promote member",
			role: constant.RoleAdmin,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, constant.RoleAdmin, fields[model.FieldRole])

						return nil
					})
			},
		},
		{
			name: "already has role",
			role: constant.RoleMember,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "not found",
			role: constant.RoleAdmin,
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, clears := newService(t)
			tt.setupMock(repo)

			err := svc.UpdateRole(adminContext(), dto.UpdateRoleRequest{Role: tt.role}, 7)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			clears.Wait(t, "user:count*")
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc, repo, _, clears := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := svc.Delete(adminContext(), 7)

		assert.NoError(t, err)
		clears.Wait(t, "user:count*", "reservation:*")
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, _, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := svc.Delete(adminContext(), 7)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
