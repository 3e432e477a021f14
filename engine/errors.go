// ABOUTME: Sentinel errors for the placement engine
// ABOUTME: All are expected control flow for callers, matched with errors.Is

package engine

import "errors"

var (
	// Structural errors: the caller passed an id not present in the
	// currently loaded inventory. Fatal to the call, not the session.
	ErrUnknownWorkload = errors.New("unknown workload")
	ErrUnknownPool     = errors.New("unknown pool")

	// History errors: expected at history boundaries.
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// State-machine errors: caller sequencing issues, recoverable by
	// retrying with corrected sequencing or an explicit flag.
	ErrAlreadyPlanned   = errors.New("automatic placement already ran; pass force to discard and re-plan")
	ErrNothingPlacedYet = errors.New("nothing placed yet; run automatic placement first")
	ErrNotYetPlanned    = errors.New("not yet planned; run automatic placement before requesting a report")
	ErrNoInventory      = errors.New("no inventory loaded")

	// Data errors raised when seeding a session.
	ErrDuplicateID = errors.New("duplicate id in inventory")

	// Registry lookups.
	ErrSessionNotFound = errors.New("session not found")
)
