package identity

import (
	"context"

	models "sharecast/internal/domain/models/identity"
)

// ProfileRepository defines data access for base account profiles.
type ProfileRepository interface {
	// GetByPrincipal retrieves a profile by principal id
	GetByPrincipal(ctx context.Context, principalID string) (*models.Profile, error)

	// CreateIfAbsent inserts the profile unless one already exists for the
	// principal. An existing row is success, not an error.
	CreateIfAbsent(ctx context.Context, profile *models.Profile) error
}

// SharerProfileRepository defines data access for partition owner records.
type SharerProfileRepository interface {
	// GetByOwner retrieves the sharer profile owned by the principal.
	// A principal owns at most one partition.
	GetByOwner(ctx context.Context, principalID string) (*models.SharerProfile, error)

	// Owns reports whether the principal owns the given partition
	Owns(ctx context.Context, principalID, partitionID string) (bool, error)

	// Create creates a new sharer profile (account creation / seeding)
	Create(ctx context.Context, profile *models.SharerProfile) error
}
