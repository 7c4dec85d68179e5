package input

import (
	"context"
	"time"

	"perk-roulette/internal/domain"
)

// RouletteService interface - Input port (use case)
// Defines what command surfaces can do with a user's roulette session.
// Every mutating operation on the same user is serialized; operations on
// different users run in parallel.
type RouletteService interface {
	// Roll draws a fresh build honoring the blacklist and the anti-repetition counters
	Roll(ctx context.Context, userID string) (*domain.BuildResult, error)

	// ReplaceAt re-draws a single slot of the live build
	ReplaceAt(ctx context.Context, userID string, index int) (*domain.BuildResult, error)

	// BanAndReplace blacklists the perk at index and re-draws that slot
	BanAndReplace(ctx context.Context, userID string, index int) (*domain.BuildResult, error)

	// SetCustomBuild installs a caller supplied build verbatim
	SetCustomBuild(ctx context.Context, userID string, perkIDs []string) (*domain.BuildResult, error)

	// SetCustomBuildByTitles resolves exact titles and installs them as the live build
	SetCustomBuildByTitles(ctx context.Context, userID string, titles []string) (*domain.BuildResult, error)

	// CurrentBuild returns the live build
	CurrentBuild(ctx context.Context, userID string) (*domain.BuildResult, error)

	// PerkIDAt returns the perk id in a slot of the live build
	PerkIDAt(ctx context.Context, userID string, index int) (string, error)

	// AddToBlacklist excludes a perk from future draws
	AddToBlacklist(ctx context.Context, userID, perkID string) (*domain.BlacklistChange, error)

	// RemoveFromBlacklist allows a perk in future draws again
	RemoveFromBlacklist(ctx context.Context, userID, perkID string) (*domain.BlacklistChange, error)

	// RegisterResult records a win or loss at most once per build.
	// An empty perkIDs registers against the live build.
	RegisterResult(ctx context.Context, userID string, won bool, perkIDs []string) (*domain.BuildResult, error)

	// RegisterResultForBuild records a result only while buildID is the live build
	RegisterResultForBuild(ctx context.Context, userID, buildID string, won bool) (*domain.BuildResult, error)

	// GetWhitelisted returns the titles eligible for random draws
	GetWhitelisted(ctx context.Context, userID string) ([]string, error)

	// GetBlacklisted returns the titles excluded from random draws
	GetBlacklisted(ctx context.Context, userID string) ([]string, error)

	// GetAll returns every title in catalog order
	GetAll(ctx context.Context) []string

	// SetLastMessage stores the handle of the last rendered build message
	SetLastMessage(ctx context.Context, userID, ref string) error

	// LastMessage returns the handle of the last rendered build message
	LastMessage(ctx context.Context, userID string) (string, error)

	// PerkByTitle resolves an exact title
	PerkByTitle(title string) (*domain.Perk, error)

	// PerkHelp returns the formatted description of a perk
	PerkHelp(perkID string) (*domain.PerkHelp, error)

	// Usage returns aggregated perk usage statistics
	Usage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error)

	// EndSession evicts a user's session
	EndSession(userID string, force bool) error

	// EvictIdle drops sessions unused for maxIdle and returns how many were removed
	EvictIdle(maxIdle time.Duration) int

	// Health pings the constraint store and returns the number of live sessions
	Health(ctx context.Context) (int, error)
}
