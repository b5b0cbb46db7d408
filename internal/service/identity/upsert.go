package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sharecast/internal/domain"
)

// writeFunc is one path of a two-path idempotent write.
type writeFunc func(ctx context.Context) error

// idempotentUpsert runs the primary write path (the privileged stored
// procedure) and falls back to the direct privileged write on any failure.
// Both paths must produce the same final row. A uniqueness conflict on
// either path means the row already exists and counts as success - the
// loser of a concurrent race must not see an error.
func idempotentUpsert(ctx context.Context, logger *slog.Logger, name string, primary, fallback writeFunc) error {
	err := primary(ctx)
	if err == nil || errors.Is(err, domain.ErrConflict) {
		return nil
	}

	logger.Warn("primary write path failed, falling back to direct write",
		"write", name,
		"error", err,
	)

	err = fallback(ctx)
	if err == nil || errors.Is(err, domain.ErrConflict) {
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}
