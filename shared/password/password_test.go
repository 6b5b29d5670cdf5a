package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libres/shared/password"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "regular", input: "password123"},
		{name: "unicode", input: "şifre-çok-gizli"},
		{name: "at the limit", input: strings.Repeat("a", 72)},
		{name: "empty", input: "", wantErr: password.ErrEmptyPassword},
		{name: "over the limit", input: strings.Repeat("a", 73), wantErr: password.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := password.Hash(tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hashed)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.input, hashed)
			assert.NoError(t, password.Verify(tt.input, hashed))
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("password123")
	require.NoError(t, err)

	second, err := password.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify(t *testing.T) {
	hashed, err := password.Hash("password123")
	require.NoError(t, err)

	tests := []struct {
		name       string
		password   string
		hash       string
		wantErr    error
		wantOpaque bool
	}{
		{name: "match", password: "password123", hash: hashed},
		{name: "mismatch", password: "password124", hash: hashed, wantErr: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hashed, wantErr: password.ErrInvalidPassword},
		{name: "empty hash", password: "password123", hash: "", wantErr: password.ErrInvalidPassword},
		{name: "corrupt hash", password: "password123", hash: "not-a-bcrypt-hash", wantOpaque: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantOpaque:
				require.Error(t, err)
				assert.NotErrorIs(t, err, password.ErrInvalidPassword)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
