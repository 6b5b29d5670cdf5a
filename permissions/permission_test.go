package permissions_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libres/permissions"
	"libres/shared/constant"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name     string
		path     string
		method   string
		wantSkip bool
		want     []string
	}{
		{
			name:     "login is public",
			path:     "/v1/auth/login",
			method:   http.MethodPost,
			wantSkip: true,
		},
		{
			name:     "room listing is public with trailing slash",
			path:     "/v1/rooms/",
			method:   http.MethodGet,
			wantSkip: true,
		},
		{
			name:   "room creation is admin only",
			path:   "/v1/rooms/",
			method: http.MethodPost,
			want:   []string{constant.RoleAdmin},
		},
		{
			name:   "members book reservations",
			path:   "/v1/reservations",
			method: http.MethodPost,
			want:   []string{constant.RoleAdmin, constant.RoleMember},
		},
		{
			name:   "admin cancel override",
			path:   "/v1/admin/reservations/{id}/cancel",
			method: http.MethodPatch,
			want:   []string{constant.RoleAdmin},
		},
		{
			name:   "unknown route",
			path:   "/v1/unknown",
			method: http.MethodGet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantSkip, permission.Skip)
			assert.Equal(t, tt.want, permission.Roles)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"endpoints":[{"path":"/v1/rooms","method":"GET","skip":true},{"path":"/v1/rooms","method":"POST","permissions":["admin"]}]}`,
		},
		{
			name:    "duplicate route",
			raw:     `{"endpoints":[{"path":"/v1/rooms","method":"GET"},{"path":"/v1/rooms/","method":"get"}]}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			raw:     `{"endpoints":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := permissions.Parse([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, data.FindPermissions("/v1/rooms/", http.MethodGet).Skip)
			assert.Equal(t, []string{constant.RoleAdmin}, data.FindPermissions("/v1/rooms", http.MethodPost).Roles)
		})
	}
}
