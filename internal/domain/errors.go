package domain

import "errors"

// Component-local failures are returned as values so callers (and the
// reasoning loop) can render them for the model instead of crashing.
// Only store and upstream failures propagate as wrapped errors.
var (
	// ErrNoBalance means no balance row exists yet for the user.
	ErrNoBalance = errors.New("no balance recorded")

	// ErrGoalNotFound means no active goal matched the given name.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrLimitExceeded means a hard spending limit blocked the
	// transaction before anything was written.
	ErrLimitExceeded = errors.New("hard spending limit exceeded")

	// ErrValidation covers locally rejected input (bad kind,
	// non-positive amount, malformed arguments).
	ErrValidation = errors.New("validation failed")

	// ErrUnknownTool means the model requested a tool name outside the
	// declared set.
	ErrUnknownTool = errors.New("unknown tool")
)
