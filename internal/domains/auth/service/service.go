package service

import (
	"context"
	"fmt"
	"strconv"

	"libres/config"
	"libres/infras/jwt"
	"libres/infras/otel"
	"libres/internal/domains/auth/model/dto"
	userModel "libres/internal/domains/user/model"
	userRepo "libres/internal/domains/user/repository"
	userService "libres/internal/domains/user/service"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	"libres/shared/password"
	"libres/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Unknown emails and wrong passwords answer the same way.
var (
	errInvalidCredentials = failure.Unauthorized("invalid email or password")
	errDeactivated        = failure.Forbidden("user account is deactivated")
	errBadRefreshToken    = failure.Unauthorized("invalid refresh token")
	errUserNotFound       = failure.NotFound("user not found")
	errWrongPassword      = failure.BadRequestFromString("current password is incorrect")
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (int64, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.Session, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.Tokens, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID int64) error
}

type serviceImpl struct {
	users    userRepo.User
	accounts userService.User
	cfg      *config.Config
	otel     otel.Otel
	tokens   jwt.JWT
}

func New(users userRepo.User, accounts userService.User, cfg *config.Config, otel otel.Otel, tokens jwt.JWT) Auth {
	return &serviceImpl{
		users:    users,
		accounts: accounts,
		cfg:      cfg,
		otel:     otel,
		tokens:   tokens,
	}
}

// Register creates a member account. Admin accounts are only created by other admins.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (id int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	id, err = s.accounts.Create(ctx, req.ToCreateUserRequest(), constant.RoleMember)
	if err != nil {
		return 0, fmt.Errorf("failed to register user: %w", err)
	}

	return id, nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (session dto.Session, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email := req.NormalizedEmail()

	byEmail := gDto.FilterGroup{}
	byEmail.And(gDto.Filter{Field: userModel.FieldEmail, Operator: gDto.FilterOperatorEq, Value: email, Table: userModel.TableName})

	user, err := s.users.Get(ctx, byEmail)

	switch {
	case err != nil:
		log.Error().Err(err).Msg("failed to get user")

		return session, fmt.Errorf("failed to get user: %w", err)
	case user.ID == 0:
		log.Warn().Str("email", email).Msg("login attempt with unknown email")

		return session, errInvalidCredentials
	case password.Verify(req.Password, user.Password) != nil:
		log.Warn().Str("email", email).Msg("login attempt with wrong password")

		return session, errInvalidCredentials
	case !user.Active:
		return session, errDeactivated
	}

	pair, err := s.tokens.GenerateTokenPair(ctx, strconv.FormatInt(user.ID, 10), user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return session, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// A stale last_login does not block the login.
	now := timezone.Now()
	if err = s.users.Update(ctx, shared.ChangedColumns(dto.LastLogin(now), user.Email), shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to update last login")
	} else {
		user.LastLogin = &now
	}

	session.Tokens = dto.NewTokens(pair)
	session.User.FromModel(user)

	return session, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (tokens dto.Tokens, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	pair, err := s.tokens.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return tokens, errBadRefreshToken
	}

	return dto.NewTokens(pair), nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	byID := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.users.Get(ctx, byID)

	switch {
	case err != nil:
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	case user.ID == 0:
		return errUserNotFound
	case password.Verify(req.CurrentPassword, user.Password) != nil:
		return errWrongPassword
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = s.users.Update(ctx, shared.ChangedColumns(dto.Password(hashed), shared.Actor(ctx)), byID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
