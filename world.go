package atlas

import (
	"compress/gzip"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/Tnze/go-mc/save"
	"github.com/google/uuid"
)

// World is a single loaded world save. Path points at the region directory of
// the save; level.dat is expected one directory up.
type World struct {
	UUID    uuid.UUID
	Name    string
	Path    string
	Version string
}

// LoadWorld prepares a world from its region directory. The UUID is derived
// from the absolute save path so it stays stable across restarts. A missing or
// unreadable level.dat only loses the version string, not the world.
func LoadWorld(name, path string) (*World, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}

	world := &World{
		UUID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)),
		Name:    name,
		Path:    abs,
		Version: "unknown",
	}

	version, err := readLevelVersion(filepath.Join(abs, "..", "level.dat"))
	if err != nil {
		log.Printf("[atlas] failed to read level.dat for world %s: %v", name, err)
	} else {
		world.Version = version
	}

	return world, nil
}

func readLevelVersion(path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	r, err := gzip.NewReader(fd)
	if err != nil {
		return "", err
	}

	level, err := save.ReadLevel(r)
	if err != nil {
		return "", err
	}

	return level.Data.Version.Name, nil
}

// Regions lists every region currently materialized on storage, in a
// deterministic order. Empty region files are skipped.
func (w *World) Regions() ([]Region, error) {
	entries, err := os.ReadDir(w.Path)
	if err != nil {
		return nil, err
	}

	regions := []Region{}
	for _, e := range entries {
		region, ok := ParseRegionFileName(e.Name())
		if !ok {
			continue
		}

		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		regions = append(regions, region)
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].X != regions[j].X {
			return regions[i].X < regions[j].X
		}
		return regions[i].Z < regions[j].Z
	})

	return regions, nil
}
