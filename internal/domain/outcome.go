package domain

import (
	"sort"
	"time"
)

// Outcome is the stored result of a match
type Outcome string

const (
	// OutcomeWin - the player escaped
	OutcomeWin Outcome = "win"
	// OutcomeLoss - the player died
	OutcomeLoss Outcome = "loss"
)

// OutcomeOf converts a won flag into an Outcome
func OutcomeOf(won bool) Outcome {
	if won {
		return OutcomeWin
	}
	return OutcomeLoss
}

// UsageOrder sorts usage rows by games played
type UsageOrder string

const (
	// UsageOrderMost - most played first
	UsageOrderMost UsageOrder = "most"
	// UsageOrderLeast - least played first
	UsageOrderLeast UsageOrder = "least"
)

// MatchOutcome is one registered result with the build that produced it
type MatchOutcome struct {
	UserID   string
	Won      bool
	PerkIDs  []string
	PlayedAt time.Time
}

// UsageFilter narrows a usage query. Zero values mean "no restriction";
// a Limit of 0 returns every row.
type UsageFilter struct {
	UserID  string
	Outcome Outcome
	Since   time.Time
	Order   UsageOrder
	Limit   int
}

// Matches reports whether an outcome passes the filter
func (f UsageFilter) Matches(o MatchOutcome) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Outcome != "" && OutcomeOf(o.Won) != f.Outcome {
		return false
	}
	if !f.Since.IsZero() && o.PlayedAt.Before(f.Since) {
		return false
	}
	return true
}

// UsageRow is the aggregated usage of one perk
type UsageRow struct {
	PerkID string `json:"perk_id"`
	Title  string `json:"title,omitempty"`
	Games  int64  `json:"games"`
	Wins   int64  `json:"wins"`
	Losses int64  `json:"losses"`
}

// AggregateUsage counts games, wins and losses per perk over the outcomes
// that pass the filter, then sorts and limits the rows.
// Backends that cannot aggregate natively share this implementation.
func AggregateUsage(outcomes []MatchOutcome, filter UsageFilter) []UsageRow {
	index := make(map[string]int)
	rows := make([]UsageRow, 0)
	for _, o := range outcomes {
		if !filter.Matches(o) {
			continue
		}
		for _, perkID := range o.PerkIDs {
			i, ok := index[perkID]
			if !ok {
				i = len(rows)
				index[perkID] = i
				rows = append(rows, UsageRow{PerkID: perkID})
			}
			rows[i].Games++
			if o.Won {
				rows[i].Wins++
			} else {
				rows[i].Losses++
			}
		}
	}
	SortUsage(rows, filter.Order)
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows
}

// SortUsage orders rows by games, ties broken by perk id
func SortUsage(rows []UsageRow, order UsageOrder) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Games != rows[j].Games {
			if order == UsageOrderLeast {
				return rows[i].Games < rows[j].Games
			}
			return rows[i].Games > rows[j].Games
		}
		return rows[i].PerkID < rows[j].PerkID
	})
}
