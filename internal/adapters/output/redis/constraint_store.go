package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/output"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var _ output.ConstraintStore = (*ConstraintStore)(nil)

// matchEntry struct - JSON element of the match list
type matchEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Outcome   string    `json:"outcome"`
	MatchDate time.Time `json:"match_date"`
	PerkIDs   []string  `json:"perk_ids"`
}

// ConstraintStore struct - Output adapter keeping blacklists as Redis sets and
// match results as a JSON list
type ConstraintStore struct {
	client *goredis.Client
	prefix string
}

// NewConstraintStore func - keys are namespaced with prefix
func NewConstraintStore(client *goredis.Client, prefix string) *ConstraintStore {
	if prefix == "" {
		prefix = "roulette"
	}
	return &ConstraintStore{client: client, prefix: prefix}
}

func (s *ConstraintStore) blacklistKey(userID string) string {
	return fmt.Sprintf("%s:blacklist:%s", s.prefix, userID)
}

func (s *ConstraintStore) matchesKey() string {
	return s.prefix + ":matches"
}

// LoadBlacklist func
func (s *ConstraintStore) LoadBlacklist(ctx context.Context, userID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.blacklistKey(userID)).Result()
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}

// SaveBlacklist func - replaces the set atomically with MULTI/EXEC
func (s *ConstraintStore) SaveBlacklist(ctx context.Context, userID string, perkIDs []string) error {
	key := s.blacklistKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(perkIDs) > 0 {
			members := make([]interface{}, len(perkIDs))
			for i, id := range perkIDs {
				members[i] = id
			}
			pipe.SAdd(ctx, key, members...)
		}
		return nil
	})
	if err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}

// RecordOutcome func
func (s *ConstraintStore) RecordOutcome(ctx context.Context, outcome domain.MatchOutcome) error {
	data, err := json.Marshal(matchEntry{
		ID:        uuid.NewString(),
		UserID:    outcome.UserID,
		Outcome:   string(domain.OutcomeOf(outcome.Won)),
		MatchDate: outcome.PlayedAt.UTC(),
		PerkIDs:   outcome.PerkIDs,
	})
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.matchesKey(), data).Err(); err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}

// QueryUsage func - reads the whole list and aggregates it in memory
func (s *ConstraintStore) QueryUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error) {
	raw, err := s.client.LRange(ctx, s.matchesKey(), 0, -1).Result()
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	outcomes := make([]domain.MatchOutcome, 0, len(raw))
	for _, item := range raw {
		var entry matchEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			logrus.Warnf("Skipping malformed match entry: %v", err)
			continue
		}
		outcomes = append(outcomes, domain.MatchOutcome{
			UserID:   entry.UserID,
			Won:      domain.Outcome(entry.Outcome) == domain.OutcomeWin,
			PerkIDs:  entry.PerkIDs,
			PlayedAt: entry.MatchDate,
		})
	}
	return domain.AggregateUsage(outcomes, filter), nil
}

// Ping func
func (s *ConstraintStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close func
func (s *ConstraintStore) Close() error {
	return s.client.Close()
}
