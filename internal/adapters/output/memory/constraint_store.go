package memory

import (
	"context"
	"sort"
	"sync"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/output"
)

// Compile-time check to ensure MemoryConstraintStore implements ConstraintStore interface
var _ output.ConstraintStore = (*MemoryConstraintStore)(nil)

// MemoryConstraintStore struct - Output adapter keeping constraints in process memory.
// Blacklists live in a sync.Map keyed by user id; the match log is an append-only
// slice guarded by a mutex. Nothing survives a restart.
type MemoryConstraintStore struct {
	blacklists sync.Map

	mu       sync.RWMutex
	outcomes []domain.MatchOutcome
}

// NewMemoryConstraintStore creates an empty in-memory constraint store
func NewMemoryConstraintStore() *MemoryConstraintStore {
	return &MemoryConstraintStore{}
}

// LoadBlacklist returns a copy of the stored blacklist, empty for unknown users
func (m *MemoryConstraintStore) LoadBlacklist(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, exists := m.blacklists.Load(userID)
	if !exists {
		return []string{}, nil
	}
	stored := value.([]string)
	out := make([]string, len(stored))
	copy(out, stored)
	return out, nil
}

// SaveBlacklist replaces the stored blacklist.
// Saving an empty blacklist removes the entry.
func (m *MemoryConstraintStore) SaveBlacklist(ctx context.Context, userID string, perkIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(perkIDs) == 0 {
		m.blacklists.Delete(userID)
		return nil
	}
	stored := make([]string, len(perkIDs))
	copy(stored, perkIDs)
	sort.Strings(stored)
	m.blacklists.Store(userID, stored)
	return nil
}

// RecordOutcome appends a match result
func (m *MemoryConstraintStore) RecordOutcome(ctx context.Context, outcome domain.MatchOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	outcome.PerkIDs = append([]string(nil), outcome.PerkIDs...)
	m.mu.Lock()
	m.outcomes = append(m.outcomes, outcome)
	m.mu.Unlock()
	return nil
}

// QueryUsage aggregates the recorded outcomes
func (m *MemoryConstraintStore) QueryUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.AggregateUsage(m.outcomes, filter), nil
}

// Ping always succeeds
func (m *MemoryConstraintStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (m *MemoryConstraintStore) Close() error {
	return nil
}
