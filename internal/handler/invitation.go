package handler

import (
	"log/slog"
	"net/http"

	identitySvc "sharecast/internal/domain/services/identity"
	"sharecast/internal/httputil"
)

// InvitationHandler handles invitation HTTP requests
type InvitationHandler struct {
	invitations identitySvc.InvitationService
	provisioner identitySvc.InvitationProvisioner
	logger      *slog.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(
	invitations identitySvc.InvitationService,
	provisioner identitySvc.InvitationProvisioner,
	logger *slog.Logger,
) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		provisioner: provisioner,
		logger:      logger,
	}
}

// CreateInvitation creates a pending invitation on a partition the caller
// controls.
// POST /api/invitations
func (h *InvitationHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req identitySvc.CreateInvitationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invitation, err := h.invitations.CreateInvitation(r.Context(), principal, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, invitation)
}

// GetInvitation retrieves an invitation for the acceptance page. Runs
// pre-auth; the ?token= query parameter is the credential.
// GET /api/invitations/{id}
func (h *InvitationHandler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	token := r.URL.Query().Get("token")

	invitation, err := h.invitations.GetInvitation(r.Context(), id, token)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, invitation)
}

// AcceptInvitation runs the acceptance flow for the caller. Validation
// denials come back as 200 with accepted=false and a typed reason; only
// infrastructure failures that blocked the grant produce an error status.
// POST /api/invitations/{id}/accept
func (h *InvitationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invitation id is required")
		return
	}

	result, err := h.provisioner.AcceptInvitation(r.Context(), id, principal)
	if err != nil {
		h.logger.Error("invitation acceptance failed",
			"invitation_id", id,
			"principal_id", principal.ID,
			"error", err,
		)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RevokeInvitation revokes a pending invitation.
// POST /api/invitations/{id}/revoke
func (h *InvitationHandler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invitation id is required")
		return
	}

	if err := h.invitations.RevokeInvitation(r.Context(), principal, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
