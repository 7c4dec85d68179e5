package domain

import (
	"testing"
	"time"
)

func TestAggregateUsage(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	outcomes := []MatchOutcome{
		{UserID: "U1", Won: true, PerkIDs: []string{"a", "b", "c", "d"}, PlayedAt: now},
		{UserID: "U1", Won: false, PerkIDs: []string{"a", "b", "e", "f"}, PlayedAt: now.AddDate(0, -2, 0)},
		{UserID: "U2", Won: true, PerkIDs: []string{"a", "g", "h", "i"}, PlayedAt: now},
	}

	t.Run("all users, most played first", func(t *testing.T) {
		rows := AggregateUsage(outcomes, UsageFilter{})
		if rows[0].PerkID != "a" || rows[0].Games != 3 || rows[0].Wins != 2 || rows[0].Losses != 1 {
			t.Fatalf("unexpected first row %+v", rows[0])
		}
		if rows[1].PerkID != "b" || rows[1].Games != 2 {
			t.Fatalf("unexpected second row %+v", rows[1])
		}
		if len(rows) != 9 {
			t.Fatalf("expected 9 perks, got %d", len(rows))
		}
	})

	t.Run("filters", func(t *testing.T) {
		rows := AggregateUsage(outcomes, UsageFilter{UserID: "U1", Outcome: OutcomeLoss})
		if len(rows) != 4 || rows[0].Losses != 1 || rows[0].Wins != 0 {
			t.Fatalf("unexpected rows %+v", rows)
		}
		rows = AggregateUsage(outcomes, UsageFilter{UserID: "U1", Since: BeginningOfMonth(now)})
		if len(rows) != 4 || rows[0].PerkID != "a" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("least played with limit", func(t *testing.T) {
		rows := AggregateUsage(outcomes, UsageFilter{Order: UsageOrderLeast, Limit: 2})
		if len(rows) != 2 || rows[0].PerkID != "c" || rows[1].PerkID != "d" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})
}

func TestUsagePeriodSince(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 30, 0, 0, time.UTC)

	cases := []struct {
		period UsagePeriod
		want   time.Time
	}{
		{UsagePeriodAll, time.Time{}},
		{UsagePeriodMonth, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{UsagePeriodYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			got, err := tc.period.Since(now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if _, err := UsagePeriod("week").Since(now); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestNewMatchRecord(t *testing.T) {
	playedAt := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	record := NewMatchRecord(MatchOutcome{UserID: "U1", Won: true, PerkIDs: []string{"a", "b", "c", "d"}, PlayedAt: playedAt})

	if record.Outcome != OutcomeWin || record.Perks[3].Slot != 3 || record.Perks[3].PerkID != "d" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.UserID != "U1" || record.Perks[2].PerkID != "c" || !record.MatchDate.Equal(playedAt) {
		t.Fatalf("unexpected record %+v", record)
	}
}
