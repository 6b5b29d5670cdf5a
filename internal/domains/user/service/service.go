package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"libres/config"
	"libres/infras/otel"
	"libres/internal/domains/user/model"
	"libres/internal/domains/user/model/dto"
	"libres/internal/domains/user/repository"
	"libres/shared"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	"libres/shared/password"
	gRepo "libres/shared/repository"
)

const cacheKeys = shared.CacheKeys(model.EntityName)

var errUserNotFound = failure.NotFound("user not found")

type User interface {
	Create(ctx context.Context, req dto.CreateUserRequest, role string) (int64, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.UserResponse, error)
	Update(ctx context.Context, req dto.UpdateUserRequest, id int64) error
	UpdateRole(ctx context.Context, req dto.UpdateRoleRequest, id int64) error
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// Create registers a user with the given role. Registration creates members, admins create
// other admins through the same path.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateUserRequest, role string) (id int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureEmailFree(ctx, req.Email, 0); err != nil {
		return 0, err
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err = s.repo.Insert(ctx, req.ToModel(shared.Actor(ctx), role, hashedPassword))
	if err != nil {
		if gRepo.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return 0, failure.Conflict("email already registered") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create user")

		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.invalidate(ctx)

	return id, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.List(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (dto.GetUsersResponse, error) {
		var page dto.GetUsersResponse

		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		users, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list users")

			return page, fmt.Errorf("failed to list users: %w", err)
		}

		page.FromModels(users, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.Count(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count users")

			return 0, fmt.Errorf("failed to count users: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.One(id), s.cfg.Cache.TTL, func(ctx context.Context) (dto.UserResponse, error) {
		var out dto.UserResponse

		user, err := s.find(ctx, id)
		if err != nil {
			return out, err
		}

		out.FromModel(user)

		return out, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateUserRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateUserRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	if err = s.ensureExists(ctx, id); err != nil {
		return err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email

		if err = s.ensureEmailFree(ctx, email, id); err != nil {
			return err
		}
	}

	if err = s.repo.Update(ctx, shared.ChangedColumns(req, shared.Actor(ctx)), byID(id)); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("failed to update user")

		return fmt.Errorf("failed to update user: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// UpdateRole promotes a member to admin or demotes an admin back to member.
func (s *serviceImpl) UpdateRole(ctx context.Context, req dto.UpdateRoleRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.UpdateRole")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == req.Role {
		return failure.BadRequestFromString("user already has role " + req.Role) // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, shared.ChangedColumns(req, shared.Actor(ctx)), byID(id)); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("failed to update user role")

		return fmt.Errorf("failed to update user role: %w", err)
	}

	log.Info().Int64("user_id", id).Str("role", req.Role).Msg("user role changed")

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the user. Their reservations go with them through the foreign key cascade.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureExists(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, byID(id)); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")

		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.invalidate(ctx, id)

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CachePrefixReservation)

	return nil
}

func byID(id int64) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.User, error) {
	user, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == 0 {
		return user, errUserNotFound
	}

	return user, nil
}

func (s *serviceImpl) ensureExists(ctx context.Context, id int64) error {
	exist, err := s.repo.Exist(ctx, byID(id))
	switch {
	case err != nil:
		log.Error().Err(err).Int64("user_id", id).Msg("failed to check user")

		return fmt.Errorf("failed to check user: %w", err)
	case !exist:
		return errUserNotFound
	}

	return nil
}

// ensureEmailFree fails with Conflict when another user (other than exceptID) owns email.
func (s *serviceImpl) ensureEmailFree(ctx context.Context, email string, exceptID int64) error {
	filter := gDto.FilterGroup{}
	filter.And(gDto.Filter{
		Field:    model.FieldEmail,
		Operator: gDto.FilterOperatorEq,
		Value:    strings.ToLower(strings.TrimSpace(email)),
		Table:    model.TableName,
	})

	if exceptID != 0 {
		filter.And(gDto.Filter{
			Field:    model.FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    exceptID,
			Table:    model.TableName,
		})
	}

	exists, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if email exists")

		return fmt.Errorf("failed to check if email exists: %w", err)
	}

	if exists {
		return failure.Conflict("email already registered") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, ids ...any) {
	go cacheKeys.Evict(context.WithoutCancel(ctx), s.cache, ids...)
}
