package handler

import (
	"log/slog"
	"net/http"

	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
	"sharecast/internal/httputil"
)

// MeHandler serves the authenticated principal's own identity surface:
// their profile, which partition they act on, and where they land after
// sign-in.
type MeHandler struct {
	resolver identitySvc.PartitionResolver
	router   identitySvc.RoleRouter
	profiles identityRepo.ProfileRepository
	logger   *slog.Logger
}

// NewMeHandler creates a new me handler
func NewMeHandler(
	resolver identitySvc.PartitionResolver,
	router identitySvc.RoleRouter,
	profiles identityRepo.ProfileRepository,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{
		resolver: resolver,
		router:   router,
		profiles: profiles,
		logger:   logger,
	}
}

// partitionResponse is the body for GET /api/me/partition
type partitionResponse struct {
	Resolved    bool   `json:"resolved"`
	PartitionID string `json:"partition_id,omitempty"`
}

// GetPartition resolves the effective partition for the caller. An optional
// ?candidate= query parameter names a partition the UI wants to act on; it
// is verified before being honored.
// GET /api/me/partition
func (h *MeHandler) GetPartition(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	candidate := r.URL.Query().Get("candidate")
	partitionID, resolved := h.resolver.ResolveEffectivePartition(r.Context(), principal, candidate)

	httputil.RespondJSON(w, http.StatusOK, partitionResponse{
		Resolved:    resolved,
		PartitionID: partitionID,
	})
}

// GetRoute returns the caller's landing route.
// GET /api/me/route
func (h *MeHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	route, err := h.router.RouteForPrincipal(r.Context(), principal)
	if err != nil {
		h.logger.Error("route lookup failed", "principal_id", principal.ID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, route)
}

// GetProfile returns the caller's base profile.
// GET /api/me/profile
func (h *MeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByPrincipal(r.Context(), principal.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// HealthCheck reports service liveness.
// GET /health
func (h *MeHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
