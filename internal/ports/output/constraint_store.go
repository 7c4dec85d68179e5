package output

import (
	"context"

	"perk-roulette/internal/domain"
)

// ConstraintStore interface - Output port
// Defines what the roulette engine needs to persist per-user constraints and match results.
// Implementations must be safe for concurrent use and should honor context deadlines;
// the engine treats any returned error as "store unavailable" and does not apply the
// corresponding in-memory change.
type ConstraintStore interface {
	// LoadBlacklist returns the perk ids a user excluded from random draws.
	// A user without a stored blacklist gets an empty slice and no error.
	LoadBlacklist(ctx context.Context, userID string) ([]string, error)

	// SaveBlacklist replaces the stored blacklist of a user.
	SaveBlacklist(ctx context.Context, userID string, perkIDs []string) error

	// RecordOutcome appends a match result together with the build it was played with.
	RecordOutcome(ctx context.Context, outcome domain.MatchOutcome) error

	// QueryUsage aggregates recorded outcomes per perk.
	QueryUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
