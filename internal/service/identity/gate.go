package identity

import (
	"context"
	"errors"
	"log/slog"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
)

// accessGate implements the AccessGate interface with ordered, independent
// checks. Every check defaults to deny: a data-source error is absence of
// evidence, never evidence of access.
type accessGate struct {
	roles     identityRepo.RoleAssignmentRepository
	sharers   identityRepo.SharerProfileRepository
	executors identityRepo.ExecutorLinkRepository
	listeners identityRepo.ListenerLinkRepository
	logger    *slog.Logger
}

// NewAccessGate creates an access gate over the standard authority store.
func NewAccessGate(
	roles identityRepo.RoleAssignmentRepository,
	sharers identityRepo.SharerProfileRepository,
	executors identityRepo.ExecutorLinkRepository,
	listeners identityRepo.ListenerLinkRepository,
	logger *slog.Logger,
) identitySvc.AccessGate {
	return &accessGate{
		roles:     roles,
		sharers:   sharers,
		executors: executors,
		listeners: listeners,
		logger:    logger,
	}
}

// NewManagementGate creates a gate for management operations: inviting,
// revoking, toggling listener access. Listener links grant consumption, not
// control, so this gate carries no listener source.
func NewManagementGate(
	roles identityRepo.RoleAssignmentRepository,
	sharers identityRepo.SharerProfileRepository,
	executors identityRepo.ExecutorLinkRepository,
	logger *slog.Logger,
) identitySvc.AccessGate {
	return &accessGate{
		roles:     roles,
		sharers:   sharers,
		executors: executors,
		logger:    logger,
	}
}

// HasAccess reports whether the principal may act on the partition. Checks
// run in fixed order and short-circuit on the first grant; a failure in one
// check never prevents the next from running.
func (g *accessGate) HasAccess(ctx context.Context, principal models.Principal, partitionID string) bool {
	if principal.ID == "" || partitionID == "" {
		return false
	}

	// 1. Privileged override: platform admins act on any partition
	if isAdmin, err := g.roles.HasRole(ctx, principal.ID, models.RoleAdmin); err != nil {
		g.logger.Error("admin check failed, continuing with deny",
			"principal_id", principal.ID,
			"error", err,
		)
	} else if isAdmin {
		return true
	}

	// 2. Ownership
	if owns, err := g.sharers.Owns(ctx, principal.ID, partitionID); err != nil {
		g.logger.Error("ownership check failed, continuing with deny",
			"principal_id", principal.ID,
			"partition_id", partitionID,
			"error", err,
		)
	} else if owns {
		return true
	}

	// 3. Delegation: executor link grants full management rights
	if exists, err := g.executors.Exists(ctx, principal.ID, partitionID); err != nil {
		g.logger.Error("executor link check failed, continuing with deny",
			"principal_id", principal.ID,
			"partition_id", partitionID,
			"error", err,
		)
	} else if exists {
		return true
	}

	// Listener link grants access unless it has been switched off.
	// Management gates carry no listener source and stop here.
	if g.listeners == nil {
		return false
	}

	link, err := g.listeners.Get(ctx, principal.ID, partitionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			g.logger.Error("listener link check failed, denying",
				"principal_id", principal.ID,
				"partition_id", partitionID,
				"error", err,
			)
		}
		return false
	}

	return link.HasAccess
}
