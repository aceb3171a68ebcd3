package graphgen

import "errors"

// Sentinel errors for the breadth-frontier graph generator (spec §4.D, §7).
var (
	// ErrNoGround is returned when the seed position has no ground hit
	// below it, so no node 0 can be projected.
	ErrNoGround = errors.New("no-ground")
	// ErrCancelled is returned when the context passed to Generate is
	// cancelled between frontier batches.
	ErrCancelled = errors.New("cancelled")
)
