package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"libres/shared/failure"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"bad request", failure.BadRequest(errors.New("bad body")), http.StatusBadRequest, "bad body"},
		{"invalid operation", failure.BadRequestFromString("reservation date is in the past"), http.StatusBadRequest, "reservation date is in the past"},
		{"unauthorized", failure.Unauthorized("Token has expired"), http.StatusUnauthorized, "Token has expired"},
		{"forbidden", failure.Forbidden("account is disabled"), http.StatusForbidden, "account is disabled"},
		{"not found", failure.NotFound("room"), http.StatusNotFound, "room"},
		{"conflict", failure.Conflict("room is already booked"), http.StatusConflict, "room is already booked"},
		{"quota", failure.QuotaExceeded("active reservation limit reached"), http.StatusUnprocessableEntity, "active reservation limit reached"},
		{"forbidden var", failure.ForbiddenError, http.StatusForbidden, "You don't have the required permissions"},
		{"restricted var", failure.ResourceRestrictedError, http.StatusForbidden, "You don't have permission to access this resource"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestBadRequestNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
		{"wrapped failure", fmt.Errorf("create reservation: %w", failure.Conflict("taken")), http.StatusConflict},
		{"double wrapped", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", failure.NotFound("user"))), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.GetCode(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("seed: %w", failure.Conflict("email already registered"))

	assert.True(t, failure.Is(wrapped, http.StatusConflict))
	assert.False(t, failure.Is(wrapped, http.StatusNotFound))
	assert.False(t, failure.Is(errors.New("boom"), http.StatusConflict))
}
