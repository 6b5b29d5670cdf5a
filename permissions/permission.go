package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var embedded []byte

// Permission is the access rule of one route pattern. Skip makes the route public; otherwise
// the caller's role must be listed in Roles. A rule without roles admits any signed in user.
type Permission struct {
	Roles  []string `json:"permissions"`
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Skip   bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	// Skip turns role checks off for every route.
	Skip bool `json:"skip"`

	index map[string]Permission
}

// Parse decodes a rules document. A method and path may only be declared once.
func Parse(raw []byte) (*PermissionData, error) {
	var data PermissionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	data.index = make(map[string]Permission, len(data.Endpoints))

	for _, endpoint := range data.Endpoints {
		key := routeKey(endpoint.Method, endpoint.Path)
		if _, dup := data.index[key]; dup {
			return nil, fmt.Errorf("duplicate permission for %s", key)
		}

		data.index[key] = endpoint
	}

	return &data, nil
}

// Get returns the rules embedded in the binary.
func Get() *PermissionData {
	data, err := Parse(embedded)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(data.Endpoints)).Msg("Successfully loaded embedded permissions")

	return data
}

// FindPermissions looks up a route pattern. "/v1/rooms" and "/v1/rooms/" are the same route.
// Unknown routes yield the zero Permission.
func (d *PermissionData) FindPermissions(path, method string) Permission {
	return d.index[routeKey(method, path)]
}

func routeKey(method, path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return strings.ToUpper(method) + " " + path
}
