package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sharecast/internal/domain"
)

func countingWrite(calls *int, err error) writeFunc {
	return func(ctx context.Context) error {
		*calls++
		return err
	}
}

func TestIdempotentUpsert(t *testing.T) {
	infraErr := errors.New("transport down")
	conflictErr := fmt.Errorf("row exists: %w", domain.ErrConflict)

	tests := []struct {
		name          string
		primaryErr    error
		fallbackErr   error
		wantErr       bool
		wantFallbacks int
	}{
		{"primary succeeds", nil, nil, false, 0},
		{"primary conflict is success", conflictErr, nil, false, 0},
		{"primary fails, fallback succeeds", infraErr, nil, false, 1},
		{"primary fails, fallback conflict is success", infraErr, conflictErr, false, 1},
		{"both paths fail", infraErr, infraErr, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var primaryCalls, fallbackCalls int
			err := idempotentUpsert(context.Background(), testLogger(), "test write",
				countingWrite(&primaryCalls, tt.primaryErr),
				countingWrite(&fallbackCalls, tt.fallbackErr),
			)

			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if primaryCalls != 1 {
				t.Errorf("primary calls = %d, want 1", primaryCalls)
			}
			if fallbackCalls != tt.wantFallbacks {
				t.Errorf("fallback calls = %d, want %d", fallbackCalls, tt.wantFallbacks)
			}
		})
	}
}

func TestIdempotentUpsert_WrapsFailure(t *testing.T) {
	infraErr := errors.New("transport down")
	err := idempotentUpsert(context.Background(), testLogger(), "grant executor link",
		func(ctx context.Context) error { return infraErr },
		func(ctx context.Context) error { return infraErr },
	)
	if !errors.Is(err, infraErr) {
		t.Fatalf("expected wrapped infrastructure error, got %v", err)
	}
}
