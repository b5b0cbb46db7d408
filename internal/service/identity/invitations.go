package identity

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
)

// invitationTTL is how long a pending invitation stays acceptable.
const invitationTTL = 14 * 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// invitationService implements the owner-side InvitationService.
// Delegation rows are never written here; only InvitationProvisioner
// creates those, during acceptance.
type invitationService struct {
	invitations identityRepo.InvitationRepository
	gate        identitySvc.AccessGate
	logger      *slog.Logger
	now         func() time.Time
}

// NewInvitationService creates an invitation lifecycle service.
func NewInvitationService(
	invitations identityRepo.InvitationRepository,
	gate identitySvc.AccessGate,
	logger *slog.Logger,
) identitySvc.InvitationService {
	return &invitationService{
		invitations: invitations,
		gate:        gate,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateInvitation creates a pending invitation for a partition the acting
// principal controls.
func (s *invitationService) CreateInvitation(ctx context.Context, principal models.Principal, req *identitySvc.CreateInvitationRequest) (*models.Invitation, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if !s.gate.HasAccess(ctx, principal, req.PartitionID) {
		return nil, fmt.Errorf("invite to partition %s: %w", req.PartitionID, domain.ErrForbidden)
	}

	now := s.now()
	invitation := &models.Invitation{
		ID:           uuid.NewString(),
		Token:        uuid.NewString(),
		InviteeEmail: strings.ToLower(strings.TrimSpace(req.InviteeEmail)),
		PartitionID:  req.PartitionID,
		Role:         req.Role,
		Status:       models.InvitationPending,
		ExpiresAt:    now.Add(invitationTTL),
		CreatedAt:    now,
	}

	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.logger.Info("invitation created",
		"invitation_id", invitation.ID,
		"partition_id", invitation.PartitionID,
		"role", invitation.Role,
		"invited_by", principal.ID,
	)

	return invitation, nil
}

// GetInvitation retrieves an invitation by id, requiring the acceptance
// token to match. The acceptance page runs pre-auth, so the token is the
// only credential; a mismatch reads as not-found to avoid leaking the
// invitation's existence.
func (s *invitationService) GetInvitation(ctx context.Context, id, token string) (*models.Invitation, error) {
	if id == "" || token == "" {
		return nil, fmt.Errorf("invitation lookup: %w", domain.ErrNotFound)
	}

	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.ID != id {
		return nil, fmt.Errorf("invitation %s: %w", id, domain.ErrNotFound)
	}

	return invitation, nil
}

// RevokeInvitation revokes a pending invitation on a partition the acting
// principal controls.
func (s *invitationService) RevokeInvitation(ctx context.Context, principal models.Principal, id string) error {
	invitation, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.gate.HasAccess(ctx, principal, invitation.PartitionID) {
		return fmt.Errorf("revoke invitation %s: %w", id, domain.ErrForbidden)
	}

	if err := s.invitations.MarkRevoked(ctx, id); err != nil {
		return err
	}

	s.logger.Info("invitation revoked",
		"invitation_id", id,
		"partition_id", invitation.PartitionID,
		"revoked_by", principal.ID,
	)

	return nil
}

// validateCreateRequest checks the invitation request. Only delegation
// roles can be invited; sharer and admin roles are never granted this way.
func (s *invitationService) validateCreateRequest(req *identitySvc.CreateInvitationRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PartitionID, validation.Required),
		validation.Field(&req.InviteeEmail, validation.Required, validation.Match(emailPattern)),
		validation.Field(&req.Role, validation.Required, validation.In(models.RoleExecutor, models.RoleListener)),
	)
}
