// Package seed sets up the identity schema and demo data for dev and test
// environments. The stored procedures the two-path write strategy prefers
// (ensure_profile, assign_role, grant_executor_link, grant_listener_link,
// accept_invitation, executor_links_for) are managed as platform SQL
// migrations, not here; this package owns only the tables the direct
// write path and the standard read path touch.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	models "sharecast/internal/domain/models/identity"
	"sharecast/internal/repository/postgres"
	postgresIdentity "sharecast/internal/repository/postgres/identity"
)

// Schema creates the identity tables if they do not exist. The unique
// constraints are load-bearing: they are what makes create-if-absent writes
// safe under concurrent invitation acceptance.
func Schema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				principal_id TEXT PRIMARY KEY,
				email        TEXT NOT NULL,
				display_name TEXT NOT NULL DEFAULT '',
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Profiles),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				partition_id        TEXT PRIMARY KEY,
				owner_principal_id  TEXT NOT NULL UNIQUE,
				subscription_active BOOLEAN NOT NULL DEFAULT true,
				created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.SharerProfiles),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				principal_id TEXT NOT NULL,
				partition_id TEXT NOT NULL,
				granted_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (principal_id, partition_id)
			)
		`, tables.ExecutorLinks),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				principal_id          TEXT NOT NULL,
				partition_id          TEXT NOT NULL,
				has_access            BOOLEAN NOT NULL DEFAULT true,
				notifications_enabled BOOLEAN NOT NULL DEFAULT true,
				granted_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (principal_id, partition_id)
			)
		`, tables.ListenerLinks),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				principal_id TEXT NOT NULL,
				role         TEXT NOT NULL,
				assigned_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (principal_id, role)
			)
		`, tables.RoleAssignments),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            TEXT PRIMARY KEY,
				token         TEXT NOT NULL UNIQUE,
				invitee_email TEXT NOT NULL,
				partition_id  TEXT NOT NULL,
				role          TEXT NOT NULL,
				status        TEXT NOT NULL DEFAULT 'pending',
				expires_at    TIMESTAMPTZ NOT NULL,
				accepted_at   TIMESTAMPTZ,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Invitations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// DropTables drops all identity tables. Dev and test environments only;
// the caller enforces that.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	names := []string{
		tables.Invitations,
		tables.RoleAssignments,
		tables.ListenerLinks,
		tables.ExecutorLinks,
		tables.SharerProfiles,
		tables.Profiles,
	}

	for _, name := range names {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", name)); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}

	return nil
}

// Demo seeds a small cast of identities through the same repositories the
// server uses: a sharer with a partition, an already-delegated listener, and
// a pending executor invitation.
func Demo(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) error {
	cfg := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	profiles := postgresIdentity.NewProfileRepository(cfg)
	sharers := postgresIdentity.NewSharerProfileRepository(cfg)
	roles := postgresIdentity.NewRoleAssignmentRepository(cfg)
	listeners := postgresIdentity.NewListenerLinkRepository(cfg)
	invitations := postgresIdentity.NewInvitationRepository(cfg)

	now := time.Now()
	sharerID := uuid.NewString()
	listenerID := uuid.NewString()
	partitionID := uuid.NewString()

	if err := profiles.CreateIfAbsent(ctx, &models.Profile{
		PrincipalID: sharerID,
		Email:       "sharer@sharecast.dev",
		DisplayName: "Demo Sharer",
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("seed sharer profile: %w", err)
	}
	if err := profiles.CreateIfAbsent(ctx, &models.Profile{
		PrincipalID: listenerID,
		Email:       "listener@sharecast.dev",
		DisplayName: "Demo Listener",
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("seed listener profile: %w", err)
	}

	if err := sharers.Create(ctx, &models.SharerProfile{
		PartitionID:        partitionID,
		OwnerPrincipalID:   sharerID,
		SubscriptionActive: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}); err != nil {
		return fmt.Errorf("seed sharer partition: %w", err)
	}

	roleRows := []models.RoleAssignment{
		{PrincipalID: sharerID, Role: models.RoleSharer, AssignedAt: now},
		{PrincipalID: listenerID, Role: models.RoleListener, AssignedAt: now},
	}
	for i := range roleRows {
		if err := roles.CreateIfAbsent(ctx, &roleRows[i]); err != nil {
			return fmt.Errorf("seed role %s: %w", roleRows[i].Role, err)
		}
	}

	if err := listeners.CreateIfAbsent(ctx, &models.ListenerLink{
		PrincipalID:          listenerID,
		PartitionID:          partitionID,
		HasAccess:            true,
		NotificationsEnabled: true,
		GrantedAt:            now,
	}); err != nil {
		return fmt.Errorf("seed listener link: %w", err)
	}

	if err := invitations.Create(ctx, &models.Invitation{
		ID:           uuid.NewString(),
		Token:        uuid.NewString(),
		InviteeEmail: "executor@sharecast.dev",
		PartitionID:  partitionID,
		Role:         models.RoleExecutor,
		Status:       models.InvitationPending,
		ExpiresAt:    now.Add(14 * 24 * time.Hour),
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("seed executor invitation: %w", err)
	}

	logger.Info("demo identities seeded",
		"partition_id", partitionID,
		"sharer_id", sharerID,
		"listener_id", listenerID,
	)

	return nil
}
