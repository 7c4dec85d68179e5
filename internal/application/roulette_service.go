package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/input"
	"perk-roulette/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Defaults taken over from the original bot
const (
	DefaultBuildSize    = 4
	DefaultMaxRepeat    = 5
	DefaultStoreTimeout = 3 * time.Second
)

// RouletteConfig struct - tunables of the roulette engine
type RouletteConfig struct {
	BuildSize    int
	MaxRepeat    int
	StoreTimeout time.Duration
}

func (c RouletteConfig) withDefaults() RouletteConfig {
	if c.BuildSize <= 0 {
		c.BuildSize = DefaultBuildSize
	}
	if c.MaxRepeat <= 0 {
		c.MaxRepeat = DefaultMaxRepeat
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	return c
}

// RouletteService struct - Application service implementing the roulette use cases
type RouletteService struct {
	catalog  *domain.Catalog
	store    output.ConstraintStore
	registry *SessionRegistry
	config   RouletteConfig
	intn     func(int) int
}

var _ input.RouletteService = (*RouletteService)(nil)

// NewRouletteService func - Creates new roulette service
func NewRouletteService(catalog *domain.Catalog, store output.ConstraintStore, registry *SessionRegistry, config RouletteConfig) *RouletteService {
	return &RouletteService{
		catalog:  catalog,
		store:    store,
		registry: registry,
		config:   config.withDefaults(),
		intn:     rand.IntN,
	}
}

// withSession runs fn while holding the user's session. A session force
// evicted while fn waited for it is dropped and the user's live one used.
func (s *RouletteService) withSession(ctx context.Context, userID string, fn func(session *domain.RouletteSession) error) error {
	for {
		session, err := s.registry.Acquire(ctx, userID)
		if err != nil {
			return err
		}
		session.Begin()
		if session.Evicted() {
			session.End()
			continue
		}
		defer session.End()
		return fn(session)
	}
}

func (s *RouletteService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.StoreTimeout)
}

// Roll func - Use case: draw a fresh build
func (s *RouletteService) Roll(ctx context.Context, userID string) (*domain.BuildResult, error) {
	var result *domain.BuildResult
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		picked, err := s.drawBuild(session)
		if err != nil {
			return err
		}
		for _, id := range picked {
			session.BumpRepeat(id, s.config.MaxRepeat)
		}
		session.SetLastRoll(picked)
		result = s.buildResult(session)
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user": userID}).Errorf("Roll failed: %v", err)
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": userID, "build": result.PerkIDs}).Info("Rolled build")
	return result, nil
}

func (s *RouletteService) drawBuild(session *domain.RouletteSession) ([]string, error) {
	exclude := make(map[string]struct{})
	for _, id := range session.Blacklist() {
		exclude[id] = struct{}{}
	}
	return draw(drawRequest{
		universe: s.catalog.IDs(),
		exclude:  exclude,
		count:    session.RepeatCount,
		need:     s.config.BuildSize,
		intn:     s.intn,
	})
}

// ReplaceAt func - Use case: re-draw one slot of the live build
func (s *RouletteService) ReplaceAt(ctx context.Context, userID string, index int) (*domain.BuildResult, error) {
	var result *domain.BuildResult
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		if err := s.replaceSlot(session, index); err != nil {
			return err
		}
		result = s.buildResult(session)
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user": userID, "index": index}).Errorf("Replace failed: %v", err)
		return nil, err
	}
	return result, nil
}

func (s *RouletteService) checkSlot(session *domain.RouletteSession, index int) error {
	if session.State() == domain.SessionStateEmpty {
		return domain.ErrNoActiveBuild
	}
	if index < 0 || index >= len(session.LastRoll()) {
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, index, len(session.LastRoll()))
	}
	return nil
}

// replaceSlot draws a replacement for one slot and installs it
func (s *RouletteService) replaceSlot(session *domain.RouletteSession, index int) error {
	picked, err := s.pickReplacement(session, index, "")
	if err != nil {
		return err
	}
	s.installSlot(session, index, picked)
	return nil
}

// pickReplacement draws a replacement for one slot without touching the session.
// The other slots, the current occupant and banned are excluded; if nothing else
// is drawable the occupant itself is kept as long as it is allowed.
func (s *RouletteService) pickReplacement(session *domain.RouletteSession, index int, banned string) (string, error) {
	if err := s.checkSlot(session, index); err != nil {
		return "", err
	}
	roll := session.LastRoll()
	current := roll[index]

	exclude := make(map[string]struct{})
	for _, id := range session.Blacklist() {
		exclude[id] = struct{}{}
	}
	for _, id := range roll {
		exclude[id] = struct{}{}
	}
	if banned != "" {
		exclude[banned] = struct{}{}
	}
	picked, err := draw(drawRequest{
		universe: s.catalog.IDs(),
		exclude:  exclude,
		count:    session.RepeatCount,
		need:     1,
		intn:     s.intn,
	})
	if errors.Is(err, domain.ErrInsufficientCatalog) && !session.IsBlacklisted(current) && current != banned {
		return current, nil
	}
	if err != nil {
		return "", err
	}
	return picked[0], nil
}

func (s *RouletteService) installSlot(session *domain.RouletteSession, index int, perkID string) {
	session.BumpRepeat(perkID, s.config.MaxRepeat)
	session.ReplaceSlot(index, perkID)
}

// BanAndReplace func - Use case: blacklist the perk in a slot and re-draw that slot.
// The replacement is drawn before the ban is stored, so a failed draw leaves no ban behind.
func (s *RouletteService) BanAndReplace(ctx context.Context, userID string, index int) (*domain.BuildResult, error) {
	var result *domain.BuildResult
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		if err := s.checkSlot(session, index); err != nil {
			return err
		}
		perkID := session.LastRoll()[index]
		replacement, err := s.pickReplacement(session, index, perkID)
		if err != nil {
			return err
		}
		if _, err := s.setListed(ctx, session, perkID, true); err != nil {
			return err
		}
		s.installSlot(session, index, replacement)
		result = s.buildResult(session)
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user": userID, "index": index}).Errorf("Ban and replace failed: %v", err)
		return nil, err
	}
	return result, nil
}

// SetCustomBuild func - Use case: install a caller supplied build.
// Duplicates and blacklisted perks are accepted; counters are left alone.
func (s *RouletteService) SetCustomBuild(ctx context.Context, userID string, perkIDs []string) (*domain.BuildResult, error) {
	if err := s.validateBuild(perkIDs); err != nil {
		return nil, err
	}
	var result *domain.BuildResult
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		session.SetLastRoll(perkIDs)
		result = s.buildResult(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": userID, "build": perkIDs}).Info("Custom build set")
	return result, nil
}

// SetCustomBuildByTitles func - Use case: install a build given by exact titles
func (s *RouletteService) SetCustomBuildByTitles(ctx context.Context, userID string, titles []string) (*domain.BuildResult, error) {
	if len(titles) != s.config.BuildSize {
		return nil, fmt.Errorf("%w: want %d perks, got %d", domain.ErrInvalidBuild, s.config.BuildSize, len(titles))
	}
	perkIDs := make([]string, len(titles))
	for i, title := range titles {
		perk, err := s.catalog.FindByTitle(title)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBuild, err)
		}
		perkIDs[i] = perk.ID
	}
	return s.SetCustomBuild(ctx, userID, perkIDs)
}

func (s *RouletteService) validateBuild(perkIDs []string) error {
	if len(perkIDs) != s.config.BuildSize {
		return fmt.Errorf("%w: want %d perks, got %d", domain.ErrInvalidBuild, s.config.BuildSize, len(perkIDs))
	}
	for _, id := range perkIDs {
		if !s.catalog.Has(id) {
			return fmt.Errorf("%w: unknown perk %q", domain.ErrInvalidBuild, id)
		}
	}
	return nil
}

// CurrentBuild func - Use case: read the live build
func (s *RouletteService) CurrentBuild(ctx context.Context, userID string) (*domain.BuildResult, error) {
	var result *domain.BuildResult
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		if session.State() == domain.SessionStateEmpty {
			return domain.ErrNoActiveBuild
		}
		result = s.buildResult(session)
		return nil
	})
	return result, err
}

// PerkIDAt func - Use case: read the perk id in one slot of the live build
func (s *RouletteService) PerkIDAt(ctx context.Context, userID string, index int) (string, error) {
	var perkID string
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		if err := s.checkSlot(session, index); err != nil {
			return err
		}
		perkID = session.LastRoll()[index]
		return nil
	})
	return perkID, err
}

// AddToBlacklist func - Use case: exclude a perk from random draws
func (s *RouletteService) AddToBlacklist(ctx context.Context, userID, perkID string) (*domain.BlacklistChange, error) {
	return s.changeBlacklist(ctx, userID, perkID, true)
}

// RemoveFromBlacklist func - Use case: allow a perk in random draws again
func (s *RouletteService) RemoveFromBlacklist(ctx context.Context, userID, perkID string) (*domain.BlacklistChange, error) {
	return s.changeBlacklist(ctx, userID, perkID, false)
}

func (s *RouletteService) changeBlacklist(ctx context.Context, userID, perkID string, listed bool) (*domain.BlacklistChange, error) {
	if _, err := s.catalog.Get(perkID); err != nil {
		return nil, err
	}
	var change *domain.BlacklistChange
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		var err error
		change, err = s.setListed(ctx, session, perkID, listed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// setListed persists the new blacklist first and swaps it into the session only on success
func (s *RouletteService) setListed(ctx context.Context, session *domain.RouletteSession, perkID string, listed bool) (*domain.BlacklistChange, error) {
	perk, err := s.catalog.Get(perkID)
	if err != nil {
		return nil, err
	}
	change := &domain.BlacklistChange{
		UserID: session.UserID,
		PerkID: perk.ID,
		Title:  perk.Title,
		Listed: listed,
	}
	fields := logrus.Fields{"user": session.UserID, "perk": perk.ID, "listed": listed}
	if session.IsBlacklisted(perkID) == listed {
		logrus.WithFields(fields).Warn("Blacklist unchanged, perk already in requested state")
		return change, nil
	}

	next := make([]string, 0)
	for _, id := range session.Blacklist() {
		if id != perkID {
			next = append(next, id)
		}
	}
	if listed {
		next = append(next, perkID)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.SaveBlacklist(storeCtx, session.UserID, next); err != nil {
		logrus.WithFields(fields).Errorf("Failed to save blacklist: %v", err)
		return nil, fmt.Errorf("%w: save blacklist: %w", domain.ErrStoreUnavailable, err)
	}
	session.ReplaceBlacklist(next)
	change.Changed = true
	logrus.WithFields(fields).Info("Blacklist updated")
	return change, nil
}

// RegisterResult func - Use case: record a win or a loss for the live build, once
func (s *RouletteService) RegisterResult(ctx context.Context, userID string, won bool, perkIDs []string) (*domain.BuildResult, error) {
	return s.registerResult(ctx, userID, won, perkIDs, "")
}

// RegisterResultForBuild func - Use case: record a result only if buildID is still the live build
func (s *RouletteService) RegisterResultForBuild(ctx context.Context, userID, buildID string, won bool) (*domain.BuildResult, error) {
	if buildID == "" {
		return nil, fmt.Errorf("%w: empty build id", domain.ErrStaleBuild)
	}
	return s.registerResult(ctx, userID, won, nil, buildID)
}

func (s *RouletteService) registerResult(ctx context.Context, userID string, won bool, perkIDs []string, buildID string) (*domain.BuildResult, error) {
	var result *domain.BuildResult
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		if session.State() == domain.SessionStateEmpty {
			return domain.ErrNoActiveBuild
		}
		if buildID != "" && buildID != session.BuildID() {
			return fmt.Errorf("%w: build %s, live %s", domain.ErrStaleBuild, buildID, session.BuildID())
		}
		build := session.LastRoll()
		if len(perkIDs) > 0 {
			if err := s.validateBuild(perkIDs); err != nil {
				return err
			}
			build = append([]string(nil), perkIDs...)
		}
		if session.ResultClaimed() {
			return domain.ErrAlreadyRegistered
		}

		storeCtx, cancel := s.storeContext(ctx)
		defer cancel()
		outcome := domain.MatchOutcome{
			UserID:   session.UserID,
			Won:      won,
			PerkIDs:  build,
			PlayedAt: time.Now(),
		}
		if err := s.store.RecordOutcome(storeCtx, outcome); err != nil {
			return fmt.Errorf("%w: record outcome: %w", domain.ErrStoreUnavailable, err)
		}
		session.ClaimResult()
		result = s.buildResult(session)
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user": userID, "won": won}).Errorf("Register result failed: %v", err)
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": userID, "outcome": domain.OutcomeOf(won)}).Info("Result registered")
	return result, nil
}

// GetWhitelisted func - Use case: titles eligible for random draws, in catalog order
func (s *RouletteService) GetWhitelisted(ctx context.Context, userID string) ([]string, error) {
	return s.titles(ctx, userID, false)
}

// GetBlacklisted func - Use case: titles excluded from random draws, in catalog order
func (s *RouletteService) GetBlacklisted(ctx context.Context, userID string) ([]string, error) {
	return s.titles(ctx, userID, true)
}

func (s *RouletteService) titles(ctx context.Context, userID string, listed bool) ([]string, error) {
	titles := make([]string, 0)
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		for _, perk := range s.catalog.All() {
			if session.IsBlacklisted(perk.ID) == listed {
				titles = append(titles, perk.Title)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// GetAll func - Use case: every title in catalog order
func (s *RouletteService) GetAll(_ context.Context) []string {
	perks := s.catalog.All()
	titles := make([]string, len(perks))
	for i, perk := range perks {
		titles[i] = perk.Title
	}
	return titles
}

// SetLastMessage func - Use case: remember the last rendered build message
func (s *RouletteService) SetLastMessage(ctx context.Context, userID, ref string) error {
	return s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		session.SetLastMessageRef(ref)
		return nil
	})
}

// LastMessage func - Use case: read the last rendered build message
func (s *RouletteService) LastMessage(ctx context.Context, userID string) (string, error) {
	var ref string
	err := s.withSession(ctx, userID, func(session *domain.RouletteSession) error {
		ref = session.LastMessageRef()
		return nil
	})
	return ref, err
}

// PerkByTitle func - Use case: resolve an exact title
func (s *RouletteService) PerkByTitle(title string) (*domain.Perk, error) {
	perk, err := s.catalog.FindByTitle(title)
	if err != nil {
		return nil, err
	}
	return &perk, nil
}

// PerkHelp func - Use case: formatted description of a perk
func (s *RouletteService) PerkHelp(perkID string) (*domain.PerkHelp, error) {
	perk, err := s.catalog.Get(perkID)
	if err != nil {
		return nil, err
	}
	return &domain.PerkHelp{
		PerkID:   perk.ID,
		Title:    perk.Title,
		Text:     perk.HelpText(),
		ImageRef: perk.ImageRef,
	}, nil
}

// Usage func - Use case: aggregated perk usage with catalog titles filled in
func (s *RouletteService) Usage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	rows, err := s.store.QueryUsage(storeCtx, filter)
	if err != nil {
		logrus.Errorln(err)
		return nil, fmt.Errorf("%w: query usage: %w", domain.ErrStoreUnavailable, err)
	}
	for i := range rows {
		if perk, err := s.catalog.Get(rows[i].PerkID); err == nil {
			rows[i].Title = perk.Title
		}
	}
	return rows, nil
}

// EndSession func - Use case: drop a user's in-memory session
func (s *RouletteService) EndSession(userID string, force bool) error {
	return s.registry.Evict(userID, force)
}

// EvictIdle func - Use case: drop sessions unused for maxIdle. Stored blacklists and results are kept.
func (s *RouletteService) EvictIdle(maxIdle time.Duration) int {
	return s.registry.EvictIdle(time.Now(), maxIdle)
}

// Health func - Use case: ping the store and count live sessions
func (s *RouletteService) Health(ctx context.Context) (int, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Ping(storeCtx); err != nil {
		logrus.Errorln(err)
		return s.registry.Len(), fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return s.registry.Len(), nil
}

func (s *RouletteService) buildResult(session *domain.RouletteSession) *domain.BuildResult {
	roll := session.LastRoll()
	result := &domain.BuildResult{
		UserID:        session.UserID,
		BuildID:       session.BuildID(),
		PerkIDs:       roll,
		Titles:        make([]string, len(roll)),
		ImageRefs:     make([]string, len(roll)),
		State:         session.State(),
		ResultClaimed: session.ResultClaimed(),
	}
	for i, id := range roll {
		perk, err := s.catalog.Get(id)
		if err != nil {
			continue
		}
		result.Titles[i] = perk.Title
		result.ImageRefs[i] = perk.ImageRef
	}
	return result
}
