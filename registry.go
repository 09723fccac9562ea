package atlas

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Registry holds every loaded world and map. It is built once at startup and
// read-only afterwards; world names and map ids are matched
// case-insensitively.
type Registry struct {
	Worlds []*World
	Maps   []*Map
}

// LoadRegistry builds the registry from a config, loading persisted render
// state where present.
func LoadRegistry(cfg *Config) (*Registry, error) {
	registry := &Registry{}

	worlds := map[string]*World{}
	for _, block := range cfg.Worlds {
		if _, exists := worlds[strings.ToLower(block.Name)]; exists {
			return nil, fmt.Errorf("duplicate world name %q", block.Name)
		}

		world, err := LoadWorld(block.Name, block.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load world %q: %w", block.Name, err)
		}

		worlds[strings.ToLower(block.Name)] = world
		registry.Worlds = append(registry.Worlds, world)
	}

	seen := map[string]struct{}{}
	for _, block := range cfg.Maps {
		if _, exists := seen[strings.ToLower(block.ID)]; exists {
			return nil, fmt.Errorf("duplicate map id %q", block.ID)
		}
		seen[strings.ToLower(block.ID)] = struct{}{}

		world, ok := worlds[strings.ToLower(block.World)]
		if !ok {
			return nil, fmt.Errorf("map %q references unknown world %q", block.ID, block.World)
		}

		name := block.Name
		if name == "" {
			name = block.ID
		}

		m := &Map{
			ID:      block.ID,
			Name:    name,
			World:   world,
			TileDir: MapTileDir(cfg.DataPath, block.ID),
			State:   NewRenderState(),
		}

		if _, err := os.Stat(m.StatePath()); err == nil {
			state, err := LoadRenderState(m.StatePath())
			if err != nil {
				log.Printf("[atlas] failed to load render state for map %s: %v", m.ID, err)
			} else {
				m.State = state
			}
		}

		registry.Maps = append(registry.Maps, m)
	}

	return registry, nil
}

// MapTileDir returns the tile directory for a map id under a data path. The
// layout is shared with purge-by-folder, which must find directories of maps
// that are no longer configured.
func MapTileDir(dataPath, mapID string) string {
	return filepath.Join(dataPath, "tiles", strings.ToLower(mapID))
}

// WorldByName looks up a world by case-insensitive exact name.
func (r *Registry) WorldByName(name string) *World {
	for _, world := range r.Worlds {
		if strings.EqualFold(world.Name, name) {
			return world
		}
	}
	return nil
}

// MapByID looks up a map by case-insensitive exact id.
func (r *Registry) MapByID(id string) *Map {
	for _, m := range r.Maps {
		if strings.EqualFold(m.ID, id) {
			return m
		}
	}
	return nil
}

// MapsForWorld returns every map rendering the given world.
func (r *Registry) MapsForWorld(world *World) []*Map {
	maps := []*Map{}
	for _, m := range r.Maps {
		if m.World == world {
			maps = append(maps, m)
		}
	}
	return maps
}
