package handler

import (
	"log/slog"
	"net/http"

	identitySvc "sharecast/internal/domain/services/identity"
	"sharecast/internal/httputil"
)

// AccessHandler exposes the access gate as a probe endpoint and the
// partition-scoped delegation management operations. The media and UI
// layers call the probe before rendering partition-scoped surfaces.
type AccessHandler struct {
	gate        identitySvc.AccessGate
	delegations identitySvc.DelegationService
	logger      *slog.Logger
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(gate identitySvc.AccessGate, delegations identitySvc.DelegationService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		gate:        gate,
		delegations: delegations,
		logger:      logger,
	}
}

// accessResponse is the body for the access probe
type accessResponse struct {
	PartitionID string `json:"partition_id"`
	Allowed     bool   `json:"allowed"`
}

// CheckAccess answers whether the caller may act on a partition. The
// response is always 200; denial is data, not an error.
// GET /api/partitions/{id}/access
func (h *AccessHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	partitionID := r.PathValue("id")
	if partitionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "partition id is required")
		return
	}

	allowed := h.gate.HasAccess(r.Context(), principal, partitionID)

	httputil.RespondJSON(w, http.StatusOK, accessResponse{
		PartitionID: partitionID,
		Allowed:     allowed,
	})
}

// listenerAccessRequest is the body for the listener access toggle
type listenerAccessRequest struct {
	HasAccess bool `json:"has_access"`
}

// SetListenerAccess toggles a listener's access to a partition without
// deleting their link.
// PUT /api/partitions/{id}/listeners/{principal_id}/access
func (h *AccessHandler) SetListenerAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	partitionID := r.PathValue("id")
	listenerID := r.PathValue("principal_id")

	var req listenerAccessRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.delegations.SetListenerAccess(r.Context(), principal, partitionID, listenerID, req.HasAccess); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
