package application

import (
	"errors"
	"math/rand/v2"
	"testing"

	"perk-roulette/internal/domain"
)

func counts(m map[string]int) func(string) int {
	return func(id string) int { return m[id] }
}

func TestDraw_PicksDistinctEligibleIDs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	universe := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	exclude := map[string]struct{}{"A": {}, "B": {}}
	cooling := map[string]int{"C": 2}

	for i := 0; i < 200; i++ {
		picked, err := draw(drawRequest{
			universe: universe,
			exclude:  exclude,
			count:    counts(cooling),
			need:     4,
			intn:     rng.IntN,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(picked) != 4 {
			t.Fatalf("expected 4 perks, got %v", picked)
		}
		assertDistinct(t, picked)
		for _, id := range picked {
			if id == "A" || id == "B" || id == "C" {
				t.Fatalf("drew excluded or cooling perk %s", id)
			}
		}
	}
}

func TestDraw_FallbackAdmitsHighestCounterFirst(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	universe := []string{"A", "B", "C", "D", "E", "F"}
	cooling := map[string]int{"A": 1, "B": 1, "C": 4, "D": 3}

	for i := 0; i < 100; i++ {
		picked, err := draw(drawRequest{
			universe: universe,
			exclude:  map[string]struct{}{},
			count:    counts(cooling),
			need:     4,
			intn:     rng.IntN,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDistinct(t, picked)
		// E and F are fresh, the two remaining slots come from tiers 4 and 3
		got := map[string]bool{}
		for _, id := range picked {
			got[id] = true
		}
		for _, want := range []string{"C", "D", "E", "F"} {
			if !got[want] {
				t.Fatalf("expected %s in %v", want, picked)
			}
		}
	}
}

func TestDraw_NeverRelaxesExclusions(t *testing.T) {
	_, err := draw(drawRequest{
		universe: []string{"A", "B", "C", "D"},
		exclude:  map[string]struct{}{"A": {}, "B": {}},
		count:    counts(map[string]int{"C": 3}),
		need:     4,
		intn:     rand.IntN,
	})
	if !errors.Is(err, domain.ErrInsufficientCatalog) {
		t.Fatalf("expected ErrInsufficientCatalog, got %v", err)
	}
}

func TestPick_IsUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))
	ids := []string{"A", "B", "C", "D"}
	hits := map[string]int{}
	const rounds = 8000
	for i := 0; i < rounds; i++ {
		hits[pick(ids, 1, rng.IntN)[0]]++
	}
	for _, id := range ids {
		if hits[id] < rounds/4-400 || hits[id] > rounds/4+400 {
			t.Errorf("perk %s drawn %d times, expected about %d", id, hits[id], rounds/4)
		}
	}
}
