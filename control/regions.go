package control

import (
	"fmt"

	"github.com/b1naryth1ef/atlas"
)

// RadiusUnset marks "no radius given": the whole world is in scope.
const RadiusUnset = -1

// RegionsWithin computes the exact set of regions to (re)render. With
// RadiusUnset it returns every region the world has materialized on storage,
// which can be large. Otherwise it returns the square of regions within
// radius region-units (Chebyshev) of the region containing the center point,
// ignoring the vertical axis. The result is deterministic for identical
// inputs.
func RegionsWithin(world *atlas.World, cx, cz float64, radius int) ([]atlas.Region, error) {
	if radius == RadiusUnset {
		return world.Regions()
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}

	center := atlas.RegionAt(cx, cz)

	width := 2*radius + 1
	regions := make([]atlas.Region, 0, width*width)
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			regions = append(regions, atlas.Region{X: x, Z: z})
		}
	}

	return regions, nil
}
