package domain

import (
	"sync"
	"testing"
	"time"
)

// TestNewRouletteSession tests session creation and initialization
func TestNewRouletteSession(t *testing.T) {
	session := NewRouletteSession("U1234567890abcdef", []string{"b", "a"})

	if session.UserID != "U1234567890abcdef" {
		t.Errorf("expected UserID U1234567890abcdef, got %s", session.UserID)
	}
	if session.State() != SessionStateEmpty {
		t.Errorf("expected EMPTY state, got %s", session.State())
	}
	if got := session.Blacklist(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected sorted blacklist [a b], got %v", got)
	}
	if session.LastAccess().IsZero() {
		t.Error("expected LastAccess to be set, got zero value")
	}
}

// TestRouletteSessionStateTransitions tests EMPTY -> ROLLED -> RESOLVED -> ROLLED
func TestRouletteSessionStateTransitions(t *testing.T) {
	session := NewRouletteSession("U1", nil)

	session.SetLastRoll([]string{"a", "b", "c", "d"})
	if session.State() != SessionStateRolled {
		t.Fatalf("expected ROLLED, got %s", session.State())
	}

	session.ClaimResult()
	if session.State() != SessionStateResolved || !session.ResultClaimed() {
		t.Fatalf("expected RESOLVED, got %s", session.State())
	}

	session.ReplaceSlot(2, "e")
	if session.State() != SessionStateRolled {
		t.Fatalf("expected replace to reopen the build, got %s", session.State())
	}
	if got := session.LastRoll(); got[2] != "e" || got[0] != "a" {
		t.Fatalf("unexpected build %v", got)
	}

	session.ClaimResult()
	session.SetLastRoll([]string{"f", "g", "h", "i"})
	if session.ResultClaimed() {
		t.Fatal("expected a new build to clear the result flag")
	}
}

// TestRouletteSessionLastRollIsCopied tests that callers cannot alias the build
func TestRouletteSessionLastRollIsCopied(t *testing.T) {
	session := NewRouletteSession("U1", nil)
	input := []string{"a", "b", "c", "d"}
	session.SetLastRoll(input)
	input[0] = "z"

	out := session.LastRoll()
	out[1] = "y"

	if got := session.LastRoll(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected stored build to be isolated, got %v", got)
	}
}

// TestRouletteSessionBumpRepeat tests counter growth and release
func TestRouletteSessionBumpRepeat(t *testing.T) {
	session := NewRouletteSession("U1", nil)

	for want := 1; want < 5; want++ {
		session.BumpRepeat("a", 5)
		if got := session.RepeatCount("a"); got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}
	session.BumpRepeat("a", 5)
	if got := session.RepeatCount("a"); got != 0 {
		t.Fatalf("expected counter released at max, got %d", got)
	}
}

// TestRouletteSessionBlacklist tests blacklist replacement
func TestRouletteSessionBlacklist(t *testing.T) {
	session := NewRouletteSession("U1", []string{"a"})

	session.ReplaceBlacklist([]string{"b", "c"})

	if session.IsBlacklisted("a") {
		t.Error("expected a to be removed")
	}
	if !session.IsBlacklisted("b") || !session.IsBlacklisted("c") {
		t.Error("expected b and c to be blacklisted")
	}
}

// TestRouletteSessionBusy tests the in-flight counter used by eviction
func TestRouletteSessionBusy(t *testing.T) {
	session := NewRouletteSession("U1", nil)
	before := session.LastAccess()

	if session.Busy() {
		t.Fatal("expected idle session")
	}
	time.Sleep(time.Millisecond)
	if !session.Retain() {
		t.Fatal("expected Retain to succeed on a live session")
	}
	if !session.Busy() {
		t.Fatal("expected busy session once retained")
	}
	session.Begin()
	if !session.LastAccess().After(before) {
		t.Error("expected Begin to touch LastAccess")
	}
	session.End()
	if session.Busy() {
		t.Fatal("expected idle session after End")
	}
}

// TestRouletteSessionSerializesOperations tests that Begin/End is mutually exclusive
func TestRouletteSessionSerializesOperations(t *testing.T) {
	session := NewRouletteSession("U1", nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Retain()
			session.Begin()
			defer session.End()
			session.BumpRepeat("a", 1000)
		}()
	}
	wg.Wait()

	session.Retain()
	session.Begin()
	defer session.End()
	if got := session.RepeatCount("a"); got != 50 {
		t.Fatalf("expected 50 increments, got %d", got)
	}
}

// TestRouletteSessionMarkEvicted tests the handshake between eviction and Retain
func TestRouletteSessionMarkEvicted(t *testing.T) {
	t.Run("refused while retained", func(t *testing.T) {
		session := NewRouletteSession("U1", nil)
		session.Retain()

		if session.MarkEvicted(false) {
			t.Fatal("expected eviction to be refused while retained")
		}
		if session.Evicted() {
			t.Fatal("expected the refused mark to be rolled back")
		}
		session.Begin()
		session.End()
	})

	t.Run("force marks a busy session", func(t *testing.T) {
		session := NewRouletteSession("U1", nil)
		session.Retain()
		defer func() {
			session.Begin()
			session.End()
		}()

		if !session.MarkEvicted(true) || !session.Evicted() {
			t.Fatal("expected force to mark the session")
		}
	})

	t.Run("retain fails after eviction", func(t *testing.T) {
		session := NewRouletteSession("U1", nil)

		if !session.MarkEvicted(false) {
			t.Fatal("expected idle session to be evictable")
		}
		if session.Retain() {
			t.Fatal("expected Retain to fail on an evicted session")
		}
		if session.Busy() {
			t.Fatal("expected a failed Retain to leave no operation in flight")
		}
	})
}

// TestRouletteSessionBuildID tests that every build change gets a new id
func TestRouletteSessionBuildID(t *testing.T) {
	session := NewRouletteSession("U1", nil)
	if session.BuildID() != "" {
		t.Fatalf("expected no build id without a build, got %q", session.BuildID())
	}

	session.SetLastRoll([]string{"a", "b", "c", "d"})
	first := session.BuildID()
	session.ClaimResult()
	if session.BuildID() != first {
		t.Fatal("expected claiming a result to keep the build id")
	}

	session.ReplaceSlot(0, "e")
	second := session.BuildID()
	if second == first {
		t.Fatal("expected a new build id after a slot change")
	}

	session.SetLastRoll([]string{"a", "b", "c", "d"})
	if session.BuildID() == second {
		t.Fatal("expected a new build id after a new roll")
	}
}
