package control

import "errors"

// Resolution and scheduling failures are terminal for the single command
// invocation that hit them; they surface as one message to the source and are
// never retried here.
var (
	// ErrUnresolvedTarget is returned when a token matches neither a world
	// name nor a map id.
	ErrUnresolvedTarget = errors.New("there is no world or map with this name")

	// ErrNoImplicitTarget is returned when no token was given and the command
	// source has no notion of a current world.
	ErrNoImplicitTarget = errors.New("can't detect a world from this command source, you'll have to name a world or map")

	// ErrMalformedCoordinates is returned when only some components of a
	// coordinate set were given.
	ErrMalformedCoordinates = errors.New("coordinates have to be given together or not at all")

	// ErrNoImplicitPosition is returned when no coordinates were given and
	// the command source has no position.
	ErrNoImplicitPosition = errors.New("can't detect a position from this command source, you'll have to give coordinates")

	// ErrInvalidRadius is returned for negative radii other than RadiusUnset.
	ErrInvalidRadius = errors.New("radius must not be negative")

	// ErrUnknownRef is returned when a task reference does not resolve to a
	// live task.
	ErrUnknownRef = errors.New("there is no task with this reference")

	// ErrAlreadyTerminal is reported when a task can no longer be removed
	// because it completed or was cancelled first. Informational, not an
	// error condition.
	ErrAlreadyTerminal = errors.New("this task is either completed or got cancelled already")

	// ErrStorageUnavailable is returned when the on-disk map data needed for
	// an operation cannot be resolved.
	ErrStorageUnavailable = errors.New("map storage unavailable")
)
