package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Profiles        string
	SharerProfiles  string
	ExecutorLinks   string
	ListenerLinks   string
	RoleAssignments string
	Invitations     string
}

// NewTableNames creates table names with the given environment prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Profiles:        fmt.Sprintf("%sprofiles", prefix),
		SharerProfiles:  fmt.Sprintf("%ssharer_profiles", prefix),
		ExecutorLinks:   fmt.Sprintf("%sexecutor_links", prefix),
		ListenerLinks:   fmt.Sprintf("%slistener_links", prefix),
		RoleAssignments: fmt.Sprintf("%srole_assignments", prefix),
		Invitations:     fmt.Sprintf("%sinvitations", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool.
//
// The managed platform exposes two ports: 5432 connects directly to
// PostgreSQL, 6543 goes through a transaction pooler that does not support
// prepared statements. When the pooler port is detected and the caller has
// not set an explicit mode in the connection string, we switch to
// QueryExecModeCacheDescribe, which uses the extended protocol without
// creating named prepared statements.
//
// Dynamic table prefixes (dev_, test_, prod_) are interpolated into SQL
// before it reaches the database, so each environment gets its own
// statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for pooler compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
