package identity

import (
	"context"
	"fmt"
	"log/slog"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
)

// delegationService implements the DelegationService interface.
type delegationService struct {
	listeners identityRepo.ListenerLinkRepository
	gate      identitySvc.AccessGate
	logger    *slog.Logger
}

// NewDelegationService creates a delegation management service.
func NewDelegationService(
	listeners identityRepo.ListenerLinkRepository,
	gate identitySvc.AccessGate,
	logger *slog.Logger,
) identitySvc.DelegationService {
	return &delegationService{
		listeners: listeners,
		gate:      gate,
		logger:    logger,
	}
}

// SetListenerAccess toggles a listener's access on a partition the acting
// principal controls. The injected gate is the management gate, so owners,
// executors, and admins can do this; listeners cannot toggle each other.
func (s *delegationService) SetListenerAccess(ctx context.Context, principal models.Principal, partitionID, listenerID string, hasAccess bool) error {
	if partitionID == "" || listenerID == "" {
		return fmt.Errorf("%w: partition id and listener id are required", domain.ErrValidation)
	}

	if !s.gate.HasAccess(ctx, principal, partitionID) {
		return fmt.Errorf("set listener access on partition %s: %w", partitionID, domain.ErrForbidden)
	}

	if err := s.listeners.SetAccess(ctx, listenerID, partitionID, hasAccess); err != nil {
		return err
	}

	s.logger.Info("listener access updated",
		"partition_id", partitionID,
		"listener_id", listenerID,
		"has_access", hasAccess,
		"updated_by", principal.ID,
	)

	return nil
}
