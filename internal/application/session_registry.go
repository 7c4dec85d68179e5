package application

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/output"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// SessionRegistry struct - process-wide map from user id to roulette session.
// Lookups are lock-free through sync.Map; first-time creation for a user is
// collapsed with singleflight so concurrent callers share one session and one
// blacklist load, while other users are never blocked.
type SessionRegistry struct {
	sessions     sync.Map
	group        singleflight.Group
	store        output.ConstraintStore
	catalog      *domain.Catalog
	storeTimeout time.Duration
}

// NewSessionRegistry creates a registry that loads blacklists from store.
// A non-positive storeTimeout falls back to DefaultStoreTimeout.
func NewSessionRegistry(store output.ConstraintStore, catalog *domain.Catalog, storeTimeout time.Duration) *SessionRegistry {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &SessionRegistry{
		store:        store,
		catalog:      catalog,
		storeTimeout: storeTimeout,
	}
}

// GetOrCreate returns the session of a user, creating it on first use
func (r *SessionRegistry) GetOrCreate(ctx context.Context, userID string) (*domain.RouletteSession, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	if value, ok := r.sessions.Load(userID); ok {
		return value.(*domain.RouletteSession), nil
	}

	value, err, _ := r.group.Do(userID, func() (interface{}, error) {
		if existing, ok := r.sessions.Load(userID); ok {
			return existing, nil
		}
		blacklist, err := r.loadBlacklist(ctx, userID)
		if err != nil {
			return nil, err
		}
		session := domain.NewRouletteSession(userID, blacklist)
		actual, _ := r.sessions.LoadOrStore(userID, session)
		logrus.Infof("Roulette session created: userID=%s, blacklisted=%d", userID, len(blacklist))
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.RouletteSession), nil
}

// Acquire resolves the session of a user and counts the caller in flight,
// so Evict without force refuses it from here on. The caller pairs it with
// session.Begin and session.End.
func (r *SessionRegistry) Acquire(ctx context.Context, userID string) (*domain.RouletteSession, error) {
	for {
		session, err := r.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		if session.Retain() {
			return session, nil
		}
		// evicted between lookup and retain, Evict drops it from the map right after marking
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runtime.Gosched()
	}
}

// Evict removes a session. Without force it refuses while an operation is in flight.
// Evicting an unknown user is a no-op.
func (r *SessionRegistry) Evict(userID string, force bool) error {
	value, ok := r.sessions.Load(userID)
	if !ok {
		logrus.Warnf("Evict requested for unknown session: userID=%s", userID)
		return nil
	}
	session := value.(*domain.RouletteSession)
	if !session.MarkEvicted(force) {
		return fmt.Errorf("%w: userID=%s", domain.ErrSessionBusy, userID)
	}
	if session.Busy() {
		logrus.Warnf("Force evicting busy session: userID=%s", userID)
	}
	r.sessions.CompareAndDelete(userID, session)
	logrus.Infof("Roulette session evicted: userID=%s", userID)
	return nil
}

// EvictIdle removes every session not used since now-maxIdle. Busy sessions are kept.
func (r *SessionRegistry) EvictIdle(now time.Time, maxIdle time.Duration) int {
	cutoff := now.Add(-maxIdle)
	evicted := 0
	r.sessions.Range(func(key, value interface{}) bool {
		session := value.(*domain.RouletteSession)
		if !session.LastAccess().Before(cutoff) || !session.MarkEvicted(false) {
			return true
		}
		if r.sessions.CompareAndDelete(key, session) {
			evicted++
		}
		return true
	})
	if evicted > 0 {
		logrus.Infof("Evicted %d idle roulette sessions, maxIdle=%s", evicted, maxIdle)
	}
	return evicted
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	n := 0
	r.sessions.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// loadBlacklist reads the stored blacklist and drops ids the catalog no longer knows
func (r *SessionRegistry) loadBlacklist(ctx context.Context, userID string) ([]string, error) {
	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	stored, err := r.store.LoadBlacklist(storeCtx, userID)
	if err != nil {
		logrus.Errorf("Failed to load blacklist: userID=%s, err=%v", userID, err)
		return nil, fmt.Errorf("%w: load blacklist: %w", domain.ErrStoreUnavailable, err)
	}
	blacklist := make([]string, 0, len(stored))
	for _, perkID := range stored {
		if !r.catalog.Has(perkID) {
			logrus.Warnf("Ignoring unknown blacklisted perk: userID=%s, perkID=%s", userID, perkID)
			continue
		}
		blacklist = append(blacklist, perkID)
	}
	return blacklist, nil
}
