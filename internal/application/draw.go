package application

import (
	"fmt"
	"sort"

	"perk-roulette/internal/domain"
)

// drawRequest describes one constrained draw over the catalog
type drawRequest struct {
	universe []string            // candidate ids in catalog order
	exclude  map[string]struct{} // ids that may never be drawn (blacklist, other slots)
	count    func(string) int    // anti-repetition counter, 0 when eligible
	need     int
	intn     func(int) int
}

// draw picks req.need distinct ids.
//
// Eligible ids (not excluded, counter 0) are used first. When there are fewer
// eligible ids than needed, cooling ids are admitted tier by tier, highest
// counter first, and the remaining slots are drawn from the admitted pool.
// Excluded ids are never admitted, so the call fails with
// ErrInsufficientCatalog instead of retrying.
func draw(req drawRequest) ([]string, error) {
	fresh := make([]string, 0, len(req.universe))
	tiers := make(map[int][]string)
	for _, id := range req.universe {
		if _, skip := req.exclude[id]; skip {
			continue
		}
		if c := req.count(id); c > 0 {
			tiers[c] = append(tiers[c], id)
			continue
		}
		fresh = append(fresh, id)
	}

	picked := pick(fresh, min(req.need, len(fresh)), req.intn)
	remaining := req.need - len(picked)
	if remaining == 0 {
		return picked, nil
	}

	levels := make([]int, 0, len(tiers))
	for level := range tiers {
		levels = append(levels, level)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	pool := make([]string, 0)
	for _, level := range levels {
		if len(pool) >= remaining {
			break
		}
		pool = append(pool, tiers[level]...)
	}
	if len(pool) < remaining {
		return nil, fmt.Errorf("%w: need %d, only %d available", domain.ErrInsufficientCatalog, req.need, len(picked)+len(pool))
	}
	return append(picked, pick(pool, remaining, req.intn)...), nil
}

// pick selects n distinct elements uniformly with a partial Fisher-Yates shuffle
func pick(ids []string, n int, intn func(int) int) []string {
	pool := make([]string, len(ids))
	copy(pool, ids)
	for i := 0; i < n; i++ {
		j := i + intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
