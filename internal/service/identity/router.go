package identity

import (
	"context"
	"fmt"
	"log/slog"

	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
	"sharecast/internal/routes"
)

// rolePriority is the fixed landing priority. Delegation counts never
// factor in; only role membership does.
var rolePriority = []models.Role{
	models.RoleAdmin,
	models.RoleSharer,
	models.RoleExecutor,
	models.RoleListener,
}

// roleRouter implements the RoleRouter interface over the routes registry.
type roleRouter struct {
	registry *routes.Registry
	roles    identityRepo.RoleAssignmentRepository
	logger   *slog.Logger
}

// NewRoleRouter creates a role router.
func NewRoleRouter(
	registry *routes.Registry,
	roles identityRepo.RoleAssignmentRepository,
	logger *slog.Logger,
) identitySvc.RoleRouter {
	return &roleRouter{
		registry: registry,
		roles:    roles,
		logger:   logger,
	}
}

// RouteFor picks the landing route for a set of held roles.
func (r *roleRouter) RouteFor(roleSet models.RoleSet) routes.Route {
	for _, role := range rolePriority {
		if !roleSet.Has(role) {
			continue
		}
		if route, ok := r.registry.ForRole(role); ok {
			return route
		}
	}
	return r.registry.Onboarding()
}

// RouteForPrincipal loads the principal's role assignments and routes them.
// The advisory claims hint is never used here; roles come from the store.
func (r *roleRouter) RouteForPrincipal(ctx context.Context, principal models.Principal) (routes.Route, error) {
	roleSet, err := r.roles.ListRoles(ctx, principal.ID)
	if err != nil {
		return routes.Route{}, fmt.Errorf("list roles for routing: %w", err)
	}
	return r.RouteFor(roleSet), nil
}
