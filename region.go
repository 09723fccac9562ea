package atlas

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RegionBlockSize is the width of a region in world blocks (32 chunks).
const RegionBlockSize = 512

// Region is a single 32x32-chunk cell of the world grid. Regions are the unit
// of render granularity and match the anvil region files that store them.
type Region struct {
	X int
	Z int
}

func (r Region) String() string {
	return fmt.Sprintf("r.%d.%d", r.X, r.Z)
}

// FileName returns the anvil region file name for this region.
func (r Region) FileName() string {
	return r.String() + ".mca"
}

// RegionAt returns the region containing the given world-space coordinates,
// projected onto the horizontal plane.
func RegionAt(x, z float64) Region {
	return Region{
		X: int(math.Floor(x / RegionBlockSize)),
		Z: int(math.Floor(z / RegionBlockSize)),
	}
}

// ParseRegionName parses the "r.<x>.<z>" form used for state keys and tile
// names.
func ParseRegionName(name string) (Region, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] != "r" {
		return Region{}, false
	}

	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return Region{}, false
	}

	z, err := strconv.Atoi(parts[2])
	if err != nil {
		return Region{}, false
	}

	return Region{X: x, Z: z}, true
}

// ParseRegionFileName parses an anvil region file name ("r.<x>.<z>.mca").
func ParseRegionFileName(name string) (Region, bool) {
	if !strings.HasSuffix(name, ".mca") {
		return Region{}, false
	}
	return ParseRegionName(strings.TrimSuffix(name, ".mca"))
}
