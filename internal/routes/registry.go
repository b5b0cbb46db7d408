package routes

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"sharecast/internal/domain/models/identity"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Route is a landing context the UI navigates to after sign-in.
type Route struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// registryFile is the on-disk shape of the routes config.
type registryFile struct {
	Onboarding Route            `yaml:"onboarding"`
	Roles      map[string]Route `yaml:"roles"`
}

// Registry maps roles to their landing routes. Loaded once from the
// embedded YAML config at startup; read-only afterwards.
type Registry struct {
	onboarding Route
	byRole     map[identity.Role]Route
}

// NewRegistry loads the embedded routes config.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/routes.yaml")
	if err != nil {
		return nil, fmt.Errorf("read routes config: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal routes config: %w", err)
	}

	if file.Onboarding.Path == "" {
		return nil, fmt.Errorf("routes config missing onboarding route")
	}

	byRole := make(map[identity.Role]Route, len(file.Roles))
	for name, route := range file.Roles {
		role, ok := identity.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("routes config has unknown role %q", name)
		}
		if route.Path == "" {
			return nil, fmt.Errorf("routes config role %q missing path", name)
		}
		byRole[role] = route
	}

	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleSharer, identity.RoleExecutor, identity.RoleListener} {
		if _, ok := byRole[role]; !ok {
			return nil, fmt.Errorf("routes config missing role %q", role)
		}
	}

	return &Registry{onboarding: file.Onboarding, byRole: byRole}, nil
}

// ForRole returns the landing route for a role.
func (r *Registry) ForRole(role identity.Role) (Route, bool) {
	route, ok := r.byRole[role]
	return route, ok
}

// Onboarding returns the route for principals with no roles.
func (r *Registry) Onboarding() Route {
	return r.onboarding
}
