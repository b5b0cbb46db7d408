package identity

import (
	"context"
	"log/slog"

	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
	identitySvc "sharecast/internal/domain/services/identity"
)

// partitionResolver implements the PartitionResolver interface by cascading
// through an ordered list of authority providers. The cascade stops at the
// first verified result; an infrastructure failure in one provider is
// logged and the next provider runs.
type partitionResolver struct {
	gate      identitySvc.AccessGate
	providers []authorityProvider
	logger    *slog.Logger
}

// NewPartitionResolver creates a resolver over the standard-path
// repositories with the privileged read path as last resort.
func NewPartitionResolver(
	sharers identityRepo.SharerProfileRepository,
	executors identityRepo.ExecutorLinkRepository,
	bypass BypassReader,
	gate identitySvc.AccessGate,
	logger *slog.Logger,
) identitySvc.PartitionResolver {
	return &partitionResolver{
		gate: gate,
		providers: []authorityProvider{
			&ownershipProvider{sharers: sharers},
			&delegationProvider{executors: executors},
			&bypassProvider{store: bypass},
		},
		logger: logger,
	}
}

// ResolveEffectivePartition returns the partition the principal acts on.
// A supplied candidate id is verified through the access gate and, when it
// passes, short-circuits the provider cascade - the only path that can.
// Returns false when no partition could be established; the caller must
// route to onboarding, never to a default partition.
func (r *partitionResolver) ResolveEffectivePartition(ctx context.Context, principal models.Principal, candidatePartitionID string) (string, bool) {
	if principal.ID == "" {
		return "", false
	}

	if candidatePartitionID != "" {
		if r.gate.HasAccess(ctx, principal, candidatePartitionID) {
			return candidatePartitionID, true
		}
		r.logger.Warn("candidate partition failed verification",
			"principal_id", principal.ID,
			"candidate_partition_id", candidatePartitionID,
		)
	}

	for _, provider := range r.providers {
		partitionID, found, err := provider.Lookup(ctx, principal)
		if err != nil {
			r.logger.Error("authority provider failed, trying next",
				"provider", provider.Name(),
				"principal_id", principal.ID,
				"error", err,
			)
			continue
		}
		if found {
			r.noteHintDisagreement(principal, partitionID)
			return partitionID, true
		}
	}

	return "", false
}

// noteHintDisagreement logs when the session-cached claims point at a
// different partition than resolved authority. The hint is advisory; the
// resolved answer always wins, but a disagreement usually means the session
// snapshot is stale and worth refreshing.
func (r *partitionResolver) noteHintDisagreement(principal models.Principal, resolvedPartitionID string) {
	if principal.Hint == nil || principal.Hint.SharerPartitionID == "" {
		return
	}
	if principal.Hint.SharerPartitionID != resolvedPartitionID {
		r.logger.Warn("claims hint disagrees with resolved partition",
			"principal_id", principal.ID,
			"hint_partition_id", principal.Hint.SharerPartitionID,
			"resolved_partition_id", resolvedPartitionID,
		)
	}
}
