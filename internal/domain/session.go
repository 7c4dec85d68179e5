package domain

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// SessionState is the conceptual state of a roulette session
type SessionState string

const (
	// SessionStateEmpty - no live build
	SessionStateEmpty SessionState = "EMPTY"
	// SessionStateRolled - live build without a registered result
	SessionStateRolled SessionState = "ROLLED"
	// SessionStateResolved - live build with a registered result
	SessionStateResolved SessionState = "RESOLVED"
)

// RouletteSession represents the mutable roulette state of one user.
//
// All accessors except UserID, Busy, Evicted and LastAccess assume the caller
// holds the session through Retain/Begin/End. The session never talks to the constraint store
// itself; callers persist first and then apply the change here.
type RouletteSession struct {
	UserID string // owning identity

	mu         sync.Mutex
	inFlight   atomic.Int32
	evicted    atomic.Bool
	lastAccess atomic.Int64 // unix nanos, touched on every Begin

	blacklist      map[string]struct{}
	repeatCounter  map[string]int
	lastRoll       []string
	lastMessageRef string
	resultClaimed  bool
	buildSeq       uint64
}

// NewRouletteSession creates a session for a user with the given blacklist
func NewRouletteSession(userID string, blacklist []string) *RouletteSession {
	s := &RouletteSession{
		UserID:        userID,
		repeatCounter: make(map[string]int),
	}
	s.blacklist = toSet(blacklist)
	s.lastAccess.Store(time.Now().UnixNano())
	return s
}

// Retain counts an operation in flight. It fails once the session is evicted;
// the caller must then resolve the user's session again.
func (s *RouletteSession) Retain() bool {
	s.inFlight.Add(1)
	if s.evicted.Load() {
		s.inFlight.Add(-1)
		return false
	}
	return true
}

// Begin acquires a retained session
func (s *RouletteSession) Begin() {
	s.mu.Lock()
	s.lastAccess.Store(time.Now().UnixNano())
}

// End releases the session and the in-flight count taken by Retain
func (s *RouletteSession) End() {
	s.mu.Unlock()
	s.inFlight.Add(-1)
}

// Busy reports whether an operation is in flight or waiting for the session
func (s *RouletteSession) Busy() bool {
	return s.inFlight.Load() > 0
}

// MarkEvicted flags the session as evicted. Without force the mark is rolled
// back and false returned when an operation is in flight. Retain checks the
// mark after counting itself, so one of the two always sees the other.
func (s *RouletteSession) MarkEvicted(force bool) bool {
	s.evicted.Store(true)
	if !force && s.Busy() {
		s.evicted.Store(false)
		return false
	}
	return true
}

// Evicted reports whether the session was removed from its registry
func (s *RouletteSession) Evicted() bool {
	return s.evicted.Load()
}

// LastAccess returns the time of the last Begin, or the creation time
func (s *RouletteSession) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

// State returns the conceptual state of the session
func (s *RouletteSession) State() SessionState {
	switch {
	case len(s.lastRoll) == 0:
		return SessionStateEmpty
	case s.resultClaimed:
		return SessionStateResolved
	default:
		return SessionStateRolled
	}
}

// IsBlacklisted reports whether the perk is excluded from random draws
func (s *RouletteSession) IsBlacklisted(perkID string) bool {
	_, ok := s.blacklist[perkID]
	return ok
}

// Blacklist returns the blacklisted perk ids, sorted
func (s *RouletteSession) Blacklist() []string {
	ids := make([]string, 0, len(s.blacklist))
	for id := range s.blacklist {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReplaceBlacklist swaps in a new blacklist
func (s *RouletteSession) ReplaceBlacklist(perkIDs []string) {
	s.blacklist = toSet(perkIDs)
}

// RepeatCount returns the anti-repetition counter of a perk, 0 when it is not cooling down
func (s *RouletteSession) RepeatCount(perkID string) int {
	return s.repeatCounter[perkID]
}

// BumpRepeat increments the counter of a drawn perk.
// Reaching maxRepeat clears the entry so the perk becomes eligible again.
func (s *RouletteSession) BumpRepeat(perkID string, maxRepeat int) {
	next := s.repeatCounter[perkID] + 1
	if next >= maxRepeat {
		delete(s.repeatCounter, perkID)
		return
	}
	s.repeatCounter[perkID] = next
}

// LastRoll returns a copy of the live build
func (s *RouletteSession) LastRoll() []string {
	out := make([]string, len(s.lastRoll))
	copy(out, s.lastRoll)
	return out
}

// SetLastRoll replaces the live build and clears the result flag
func (s *RouletteSession) SetLastRoll(perkIDs []string) {
	s.lastRoll = make([]string, len(perkIDs))
	copy(s.lastRoll, perkIDs)
	s.resultClaimed = false
	s.buildSeq++
}

// ReplaceSlot overwrites one slot of the live build and clears the result flag
func (s *RouletteSession) ReplaceSlot(index int, perkID string) {
	roll := s.LastRoll()
	roll[index] = perkID
	s.lastRoll = roll
	s.resultClaimed = false
	s.buildSeq++
}

// BuildID identifies the live build; it changes whenever a slot changes
func (s *RouletteSession) BuildID() string {
	if len(s.lastRoll) == 0 {
		return ""
	}
	return strconv.FormatUint(s.buildSeq, 10)
}

// ResultClaimed reports whether a result was registered for the live build
func (s *RouletteSession) ResultClaimed() bool {
	return s.resultClaimed
}

// ClaimResult marks the live build as resolved
func (s *RouletteSession) ClaimResult() {
	s.resultClaimed = true
}

// LastMessageRef returns the handle of the last rendered build message
func (s *RouletteSession) LastMessageRef() string {
	return s.lastMessageRef
}

// SetLastMessageRef stores the handle of the last rendered build message
func (s *RouletteSession) SetLastMessageRef(ref string) {
	s.lastMessageRef = ref
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
