package identity

import (
	"context"
	"errors"
	"fmt"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identityRepo "sharecast/internal/domain/repositories/identity"
)

// BypassReader is the privileged read path into the authority store. It is
// consulted only after the standard path has failed to produce a result; it
// must return the same answer the standard path would have.
type BypassReader interface {
	SharerProfileByOwner(ctx context.Context, principalID string) (*models.SharerProfile, error)
	ExecutorLinksFor(ctx context.Context, principalID string) ([]models.ExecutorLink, error)
}

// authorityProvider is one source of partition authority. Providers are
// consulted in order; each answers independently and never trusts another
// provider's result.
type authorityProvider interface {
	Name() string
	Lookup(ctx context.Context, principal models.Principal) (partitionID string, found bool, err error)
}

// ownershipProvider resolves the partition the principal owns outright.
type ownershipProvider struct {
	sharers identityRepo.SharerProfileRepository
}

func (p *ownershipProvider) Name() string { return "ownership" }

func (p *ownershipProvider) Lookup(ctx context.Context, principal models.Principal) (string, bool, error) {
	profile, err := p.sharers.GetByOwner(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return profile.PartitionID, true, nil
}

// delegationProvider resolves a partition delegated to the principal as
// executor. With multiple delegations the most recently granted wins, ties
// broken by smallest partition id; the repository guarantees that ordering.
type delegationProvider struct {
	executors identityRepo.ExecutorLinkRepository
}

func (p *delegationProvider) Name() string { return "delegation" }

func (p *delegationProvider) Lookup(ctx context.Context, principal models.Principal) (string, bool, error) {
	links, err := p.executors.ListForPrincipal(ctx, principal.ID)
	if err != nil {
		return "", false, err
	}
	if len(links) == 0 {
		return "", false, nil
	}
	return links[0].PartitionID, true, nil
}

// bypassProvider repeats the ownership and delegation lookups through the
// privileged read path. It exists to tolerate standard-path outages, not to
// grant anything the standard path would not.
type bypassProvider struct {
	store BypassReader
}

func (p *bypassProvider) Name() string { return "privileged-bypass" }

func (p *bypassProvider) Lookup(ctx context.Context, principal models.Principal) (string, bool, error) {
	var firstErr error

	profile, err := p.store.SharerProfileByOwner(ctx, principal.ID)
	if err == nil {
		return profile.PartitionID, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		firstErr = fmt.Errorf("bypass ownership: %w", err)
	}

	links, err := p.store.ExecutorLinksFor(ctx, principal.ID)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("bypass delegation: %w", err)
		}
		return "", false, firstErr
	}
	if len(links) > 0 {
		return links[0].PartitionID, true, nil
	}

	return "", false, firstErr
}
