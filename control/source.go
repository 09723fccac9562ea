package control

import "github.com/b1naryth1ef/atlas"

// Position is a point in world space.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Source is the caller context a command runs for: where it is, what it may
// do, and where its feedback goes. It is owned by the command layer and only
// read here. SendMessage must be safe to call from any goroutine.
type Source interface {
	// World returns the source's current world, or nil if the source has no
	// notion of location.
	World() *atlas.World

	// Position returns the source's current position, if it has one.
	Position() (Position, bool)

	SendMessage(msg string)

	HasPermission(perm string) bool
}
