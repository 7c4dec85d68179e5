package domain

import "errors"

// Roulette error types

var (
	// ErrNotFound indicates an unknown perk id or title
	ErrNotFound = errors.New("perk not found")

	// ErrDuplicateID indicates two catalog entries share an id or a title
	ErrDuplicateID = errors.New("duplicate perk id or title")

	// ErrCatalogLoad indicates the catalog source is malformed
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrInsufficientCatalog indicates there are not enough eligible perks to complete a draw.
	// Removing entries from the blacklist usually fixes it.
	ErrInsufficientCatalog = errors.New("not enough eligible perks")

	// ErrNoActiveBuild indicates the session has no live build
	ErrNoActiveBuild = errors.New("no active build")

	// ErrIndexOutOfRange indicates a build slot outside [0, build size)
	ErrIndexOutOfRange = errors.New("build index out of range")

	// ErrInvalidBuild indicates a custom build with the wrong size or unknown perks
	ErrInvalidBuild = errors.New("invalid build")

	// ErrAlreadyRegistered indicates a result was already registered for the live build
	ErrAlreadyRegistered = errors.New("result already registered for this build")

	// ErrStaleBuild indicates a result aimed at a build that is no longer live
	ErrStaleBuild = errors.New("build is no longer live")

	// ErrSessionBusy indicates an eviction was attempted while an operation is in flight
	ErrSessionBusy = errors.New("session busy")

	// ErrStoreUnavailable indicates the constraint store failed or timed out
	ErrStoreUnavailable = errors.New("constraint store unavailable")

	// ErrInvalidUser indicates an empty user identity
	ErrInvalidUser = errors.New("invalid user id")
)
