package dto

import (
	"strings"
	"time"

	"libres/infras/jwt"
	userDto "libres/internal/domains/user/model/dto"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *RegisterRequest) ToCreateUserRequest() userDto.CreateUserRequest {
	return userDto.CreateUserRequest{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NormalizedEmail is the form emails are stored in.
func (l *LoginRequest) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(l.Email))
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,nefield=CurrentPassword"`
}

// Tokens is what a client keeps between requests.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewTokens(pair *jwt.TokenPair) Tokens {
	return Tokens{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// Session is returned on login: fresh tokens plus the account they belong to.
type Session struct {
	Tokens
	User userDto.UserResponse `json:"user"`
}

type lastLoginColumns struct {
	LastLogin time.Time `db:"last_login"`
}

type passwordColumns struct {
	Password string `db:"password"`
}

// LastLogin is the column set written after a successful login.
func LastLogin(at time.Time) any {
	return lastLoginColumns{LastLogin: at}
}

// Password is the column set written when a password changes. hashed must already be hashed.
func Password(hashed string) any {
	return passwordColumns{Password: hashed}
}
