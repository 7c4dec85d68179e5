package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"perk-roulette/internal/domain"
)

// Mock implementations for testing

// MockConstraintStore implements output.ConstraintStore for testing.
// Calls are safe for concurrent use.
type MockConstraintStore struct {
	LoadBlacklistFunc func(ctx context.Context, userID string) ([]string, error)
	SaveBlacklistFunc func(ctx context.Context, userID string, perkIDs []string) error
	RecordOutcomeFunc func(ctx context.Context, outcome domain.MatchOutcome) error
	QueryUsageFunc    func(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error)
	PingFunc          func(ctx context.Context) error

	mu sync.Mutex

	// Captured values for assertions
	LoadCalls      int
	SavedBlacklist map[string][]string
	SaveCalls      int
	Outcomes       []domain.MatchOutcome
}

func (m *MockConstraintStore) LoadBlacklist(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	m.LoadCalls++
	m.mu.Unlock()
	if m.LoadBlacklistFunc != nil {
		return m.LoadBlacklistFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockConstraintStore) SaveBlacklist(ctx context.Context, userID string, perkIDs []string) error {
	if m.SaveBlacklistFunc != nil {
		if err := m.SaveBlacklistFunc(ctx, userID, perkIDs); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SavedBlacklist == nil {
		m.SavedBlacklist = make(map[string][]string)
	}
	m.SavedBlacklist[userID] = append([]string(nil), perkIDs...)
	return nil
}

func (m *MockConstraintStore) RecordOutcome(ctx context.Context, outcome domain.MatchOutcome) error {
	if m.RecordOutcomeFunc != nil {
		if err := m.RecordOutcomeFunc(ctx, outcome); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, outcome)
	return nil
}

func (m *MockConstraintStore) QueryUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error) {
	if m.QueryUsageFunc != nil {
		return m.QueryUsageFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.AggregateUsage(m.Outcomes, filter), nil
}

func (m *MockConstraintStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockConstraintStore) Close() error {
	return nil
}

func (m *MockConstraintStore) outcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Outcomes)
}

// waitForDeadline blocks until the store context expires
func waitForDeadline(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// testCatalog builds a catalog with ids P0..P(n-1) and titles "Perk 0".."Perk n-1"
func testCatalog(t *testing.T, n int) *domain.Catalog {
	t.Helper()
	perks := make([]domain.Perk, n)
	for i := range perks {
		perks[i] = domain.Perk{
			ID:       fmt.Sprintf("P%d", i),
			Title:    fmt.Sprintf("Perk %d", i),
			ImageRef: fmt.Sprintf("images/p%d.png", i),
		}
	}
	catalog, err := domain.NewCatalog(perks)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return catalog
}

// newTestService wires an engine with a deterministic random source
func newTestService(t *testing.T, catalog *domain.Catalog, store *MockConstraintStore) *RouletteService {
	t.Helper()
	config := RouletteConfig{BuildSize: 4, MaxRepeat: 5, StoreTimeout: 50 * time.Millisecond}
	registry := NewSessionRegistry(store, catalog, config.StoreTimeout)
	service := NewRouletteService(catalog, store, registry, config)
	rng := rand.New(rand.NewPCG(1, 2))
	var mu sync.Mutex
	service.intn = func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.IntN(n)
	}
	return service
}

func assertDistinct(t *testing.T, ids []string) {
	t.Helper()
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate perk %s in %v", id, ids)
		}
		seen[id] = true
	}
}
