package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
)

// ProvisioningProcedures is the privileged stored-procedure write path.
// Every procedure is create-if-absent: calling it for an existing row is a
// no-op, which is what makes acceptance safe to retry.
type ProvisioningProcedures interface {
	EnsureProfile(ctx context.Context, profile *models.Profile) error
	AssignRole(ctx context.Context, principalID string, role models.Role) error
	GrantExecutorLink(ctx context.Context, principalID, partitionID string) error
	GrantListenerLink(ctx context.Context, principalID, partitionID string) error
	AcceptInvitation(ctx context.Context, id string, acceptedAt time.Time) error
}

// invitationProvisioner implements the InvitationProvisioner interface.
// Provisioning is deliberately non-transactional: each step is individually
// idempotent, prior steps are never rolled back, and a failed sub-step
// leaves the invitation pending so the whole flow can be retried.
type invitationProvisioner struct {
	invitations identityRepo.InvitationRepository
	profiles    identityRepo.ProfileRepository
	roles       identityRepo.RoleAssignmentRepository
	executors   identityRepo.ExecutorLinkRepository
	listeners   identityRepo.ListenerLinkRepository
	procedures  ProvisioningProcedures
	logger      *slog.Logger
	now         func() time.Time
}

// NewInvitationProvisioner creates an invitation provisioner. Writes go
// through the stored procedures first and fall back to the direct
// repositories.
func NewInvitationProvisioner(
	invitations identityRepo.InvitationRepository,
	profiles identityRepo.ProfileRepository,
	roles identityRepo.RoleAssignmentRepository,
	executors identityRepo.ExecutorLinkRepository,
	listeners identityRepo.ListenerLinkRepository,
	procedures ProvisioningProcedures,
	logger *slog.Logger,
) identitySvc.InvitationProvisioner {
	return &invitationProvisioner{
		invitations: invitations,
		profiles:    profiles,
		roles:       roles,
		executors:   executors,
		listeners:   listeners,
		procedures:  procedures,
		logger:      logger,
		now:         time.Now,
	}
}

// AcceptInvitation runs the acceptance state machine. Validation denials
// come back in the result with a typed reason; the error return is reserved
// for infrastructure failures that blocked the primary grant.
func (p *invitationProvisioner) AcceptInvitation(ctx context.Context, invitationID string, principal models.Principal) (*identitySvc.AcceptanceResult, error) {
	if err := p.validateInput(invitationID, principal); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	invitation, err := p.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	// Step 1: validate status and invitee identity
	if denied := p.validateAcceptance(invitation, principal); denied != nil {
		p.logger.Info("invitation acceptance denied",
			"invitation_id", invitation.ID,
			"principal_id", principal.ID,
			"reason", denied.Reason,
		)
		return denied, nil
	}

	now := p.now()

	// Step 2: ensure the base profile exists
	profile := &models.Profile{
		PrincipalID: principal.ID,
		Email:       strings.ToLower(principal.Email),
		CreatedAt:   now,
	}
	err = idempotentUpsert(ctx, p.logger, "ensure profile",
		func(ctx context.Context) error { return p.procedures.EnsureProfile(ctx, profile) },
		func(ctx context.Context) error { return p.profiles.CreateIfAbsent(ctx, profile) },
	)
	if err != nil {
		return nil, err
	}

	// Step 3: ensure the invited role is assigned
	if err := p.ensureRole(ctx, principal.ID, invitation.Role, now); err != nil {
		return nil, err
	}

	// Step 4: create the role-specific delegation - the contractual grant
	if err := p.createDelegation(ctx, principal.ID, invitation.PartitionID, invitation.Role, now); err != nil {
		return nil, err
	}

	// Step 5: executors always receive read access. Best-effort: the
	// executor link above is already durable and is not rolled back if
	// listener provisioning fails.
	if invitation.Role == models.RoleExecutor {
		if err := p.createDelegation(ctx, principal.ID, invitation.PartitionID, models.RoleListener, now); err != nil {
			p.logger.Error("implicit listener link provisioning failed",
				"invitation_id", invitation.ID,
				"principal_id", principal.ID,
				"partition_id", invitation.PartitionID,
				"error", err,
			)
		} else if err := p.ensureRole(ctx, principal.ID, models.RoleListener, now); err != nil {
			p.logger.Error("implicit listener role provisioning failed",
				"invitation_id", invitation.ID,
				"principal_id", principal.ID,
				"error", err,
			)
		}
	}

	// Step 6: consume the invitation. Only reached when the primary
	// delegation succeeded; a lost race here means another acceptance
	// already consumed it, and the rows exist either way.
	err = idempotentUpsert(ctx, p.logger, "mark invitation accepted",
		func(ctx context.Context) error { return p.procedures.AcceptInvitation(ctx, invitation.ID, now) },
		func(ctx context.Context) error { return p.invitations.MarkAccepted(ctx, invitation.ID, now) },
	)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p.logger.Info("invitation accepted",
		"invitation_id", invitation.ID,
		"principal_id", principal.ID,
		"partition_id", invitation.PartitionID,
		"role", invitation.Role,
	)

	return &identitySvc.AcceptanceResult{
		Accepted:    true,
		PartitionID: invitation.PartitionID,
		Role:        invitation.Role,
	}, nil
}

// validateInput checks the call arguments before touching the store
func (p *invitationProvisioner) validateInput(invitationID string, principal models.Principal) error {
	if err := validation.Validate(invitationID, validation.Required); err != nil {
		return fmt.Errorf("invitation id: %v", err)
	}
	if err := validation.Validate(principal.ID, validation.Required); err != nil {
		return fmt.Errorf("principal id: %v", err)
	}
	if err := validation.Validate(principal.Email, validation.Required); err != nil {
		return fmt.Errorf("principal email: %v", err)
	}
	return nil
}

// validateAcceptance applies the status and identity rules. Returns a
// denial result, or nil when acceptance may proceed.
func (p *invitationProvisioner) validateAcceptance(invitation *models.Invitation, principal models.Principal) *identitySvc.AcceptanceResult {
	switch invitation.Status {
	case models.InvitationAccepted:
		return &identitySvc.AcceptanceResult{Accepted: false, Reason: identitySvc.ReasonInvitationAccepted}
	case models.InvitationRevoked:
		return &identitySvc.AcceptanceResult{Accepted: false, Reason: identitySvc.ReasonInvitationRevoked}
	case models.InvitationExpired:
		return &identitySvc.AcceptanceResult{Accepted: false, Reason: identitySvc.ReasonInvitationExpired}
	}

	// Pending but past its deadline counts as expired even before the
	// stored status catches up
	if invitation.IsExpired(p.now()) {
		return &identitySvc.AcceptanceResult{Accepted: false, Reason: identitySvc.ReasonInvitationExpired}
	}

	if !strings.EqualFold(invitation.InviteeEmail, principal.Email) {
		return &identitySvc.AcceptanceResult{Accepted: false, Reason: identitySvc.ReasonEmailMismatch}
	}

	return nil
}

// ensureRole assigns the role via the two-path write
func (p *invitationProvisioner) ensureRole(ctx context.Context, principalID string, role models.Role, now time.Time) error {
	assignment := &models.RoleAssignment{
		PrincipalID: principalID,
		Role:        role,
		AssignedAt:  now,
	}
	return idempotentUpsert(ctx, p.logger, fmt.Sprintf("assign role %s", role),
		func(ctx context.Context) error { return p.procedures.AssignRole(ctx, principalID, role) },
		func(ctx context.Context) error { return p.roles.CreateIfAbsent(ctx, assignment) },
	)
}

// createDelegation writes the role-specific delegation row via the
// two-path write
func (p *invitationProvisioner) createDelegation(ctx context.Context, principalID, partitionID string, role models.Role, now time.Time) error {
	switch role {
	case models.RoleExecutor:
		link := &models.ExecutorLink{
			PrincipalID: principalID,
			PartitionID: partitionID,
			GrantedAt:   now,
		}
		return idempotentUpsert(ctx, p.logger, "grant executor link",
			func(ctx context.Context) error { return p.procedures.GrantExecutorLink(ctx, principalID, partitionID) },
			func(ctx context.Context) error { return p.executors.CreateIfAbsent(ctx, link) },
		)
	case models.RoleListener:
		link := &models.ListenerLink{
			PrincipalID:          principalID,
			PartitionID:          partitionID,
			HasAccess:            true,
			NotificationsEnabled: true,
			GrantedAt:            now,
		}
		return idempotentUpsert(ctx, p.logger, "grant listener link",
			func(ctx context.Context) error { return p.procedures.GrantListenerLink(ctx, principalID, partitionID) },
			func(ctx context.Context) error { return p.listeners.CreateIfAbsent(ctx, link) },
		)
	default:
		return fmt.Errorf("%w: invitation role %q has no delegation", domain.ErrValidation, role)
	}
}
