package control

import (
	"fmt"

	"github.com/b1naryth1ef/atlas"
)

// Target is the result of resolving a user-supplied token: exactly one of
// World or Map is set.
type Target struct {
	World *atlas.World
	Map   *atlas.Map
}

// Resolver disambiguates user-supplied tokens into worlds, maps and
// positions, falling back to the command source's current location. Pure
// lookups over the registry, no side effects.
type Resolver struct {
	registry *atlas.Registry
}

func NewResolver(registry *atlas.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// ResolveTarget resolves a token to a world (checked first) or a map. An
// empty token falls back to the source's current world.
func (r *Resolver) ResolveTarget(token string, src Source) (Target, error) {
	if token != "" {
		if world := r.registry.WorldByName(token); world != nil {
			return Target{World: world}, nil
		}
		if m := r.registry.MapByID(token); m != nil {
			return Target{Map: m}, nil
		}
		return Target{}, fmt.Errorf("%w: %q", ErrUnresolvedTarget, token)
	}

	if world := src.World(); world != nil {
		return Target{World: world}, nil
	}
	return Target{}, ErrNoImplicitTarget
}

// ResolvePosition resolves a full 3-D position: either all three coordinates
// are given, or none are and the source's position is used.
func (r *Resolver) ResolvePosition(x, y, z *float64, src Source) (Position, error) {
	given := 0
	for _, c := range []*float64{x, y, z} {
		if c != nil {
			given++
		}
	}

	switch given {
	case 3:
		return Position{X: *x, Y: *y, Z: *z}, nil
	case 0:
		if pos, ok := src.Position(); ok {
			return pos, nil
		}
		return Position{}, ErrNoImplicitPosition
	default:
		return Position{}, ErrMalformedCoordinates
	}
}

// ResolveCenter resolves a horizontal-plane center point: either both
// coordinates are given, or none are and the source's position is projected.
func (r *Resolver) ResolveCenter(x, z *float64, src Source) (cx, cz float64, err error) {
	switch {
	case x != nil && z != nil:
		return *x, *z, nil
	case x == nil && z == nil:
		pos, ok := src.Position()
		if !ok {
			return 0, 0, ErrNoImplicitPosition
		}
		return pos.X, pos.Z, nil
	default:
		return 0, 0, ErrMalformedCoordinates
	}
}
