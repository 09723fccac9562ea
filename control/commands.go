package control

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Tnze/go-mc/save/region"
	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/marker"
)

// Permission names checked by the dispatch layer before a command reaches
// this package.
const (
	PermStatus      = "atlas.status"
	PermUpdate      = "atlas.update"
	PermForceUpdate = "atlas.update.force"
	PermPurge       = "atlas.purge"
	PermCancel      = "atlas.cancel"
	PermStart       = "atlas.start"
	PermStop        = "atlas.stop"
	PermMarker      = "atlas.marker"
	PermDebug       = "atlas.debug"
	PermReload      = "atlas.reload"
)

// Commands wires the resolver, controller and runner into the operator-facing
// command set. Every mutating command returns to the caller immediately; the
// work happens on the runner and reports back through the source.
type Commands struct {
	// ConfigPath is the file Reload re-reads; reload is unavailable when it
	// is empty.
	ConfigPath string

	registry   *atlas.Registry
	resolver   *Resolver
	controller *Controller
	manager    Manager
	markers    marker.Store
	runner     *Runner
	threads    int
}

// NewCommands builds the command set. markers may be nil when no marker store
// is configured; threads is the worker count used by Start.
func NewCommands(registry *atlas.Registry, controller *Controller, manager Manager, markers marker.Store, runner *Runner, threads int) *Commands {
	if threads <= 0 {
		threads = 1
	}
	return &Commands{
		registry:   registry,
		resolver:   NewResolver(registry),
		controller: controller,
		manager:    manager,
		markers:    markers,
		runner:     runner,
		threads:    threads,
	}
}

func (c *Commands) Resolver() *Resolver {
	return c.resolver
}

func (c *Commands) Controller() *Controller {
	return c.controller
}

// Status reports the render pool state and every tracked task.
func (c *Commands) Status(src Source) error {
	status := c.controller.Status()

	if status.Running {
		src.SendMessage(fmt.Sprintf("render threads running (%d workers)", status.WorkerThreads))
	} else {
		src.SendMessage("render threads stopped")
	}

	if len(status.Tasks) == 0 {
		src.SendMessage("no tasks queued")
		return nil
	}

	src.SendMessage(fmt.Sprintf("%d tasks:", len(status.Tasks)))
	for _, t := range status.Tasks {
		src.SendMessage(fmt.Sprintf(" - [%s] %s", t.Ref, t.Description))
	}
	return nil
}

// Version reports the atlas release version.
func (c *Commands) Version(src Source) error {
	src.SendMessage(fmt.Sprintf("atlas version %s", atlas.Version))
	return nil
}

// Reload re-reads the configuration and replaces the loaded worlds and maps.
// Pending tasks are cancelled since they reference the old registry; the
// render workers have to be stopped first.
func (c *Commands) Reload(src Source) error {
	if c.ConfigPath == "" {
		return fmt.Errorf("there is no configuration file to reload from")
	}
	if c.manager.IsRunning() {
		return fmt.Errorf("stop the render threads before reloading")
	}

	cfg, err := atlas.LoadConfig(c.ConfigPath)
	if err != nil {
		return err
	}

	fresh, err := atlas.LoadRegistry(cfg)
	if err != nil {
		return err
	}

	c.controller.CancelAll()
	*c.registry = *fresh

	c.threads = cfg.Concurrency
	if c.threads <= 0 {
		c.threads = 1
	}

	src.SendMessage(fmt.Sprintf("configuration reloaded: %d worlds, %d maps", len(fresh.Worlds), len(fresh.Maps)))
	return nil
}

// Worlds lists every loaded world.
func (c *Commands) Worlds(src Source) error {
	src.SendMessage("worlds:")
	for _, world := range c.registry.Worlds {
		src.SendMessage(fmt.Sprintf(" - %s (%s, version %s)", world.Name, world.UUID, world.Version))
	}
	return nil
}

// Maps lists every configured map.
func (c *Commands) Maps(src Source) error {
	src.SendMessage("maps:")
	for _, m := range c.registry.Maps {
		src.SendMessage(fmt.Sprintf(" - %s (%s, world %s)", m.ID, m.Name, m.World.Name))
	}
	return nil
}

// UpdateArgs is the parsed argument set of the update/force-update commands.
// Target may be a world name, a map id, or empty for "the caller's world".
// Radius is RadiusUnset when no radius was given.
type UpdateArgs struct {
	Target string
	X      *float64
	Z      *float64
	Radius int
}

// Update schedules a render of the resolved target without touching existing
// render state.
func (c *Commands) Update(src Source, args UpdateArgs) error {
	return c.update(src, args, false)
}

// ForceUpdate schedules a render of the resolved target after invalidating
// its render state, so every covered region re-renders from scratch.
func (c *Commands) ForceUpdate(src Source, args UpdateArgs) error {
	return c.update(src, args, true)
}

func (c *Commands) update(src Source, args UpdateArgs, force bool) error {
	target, err := c.resolver.ResolveTarget(args.Target, src)
	if err != nil {
		return err
	}

	// Center resolution happens before dispatch so a missing source position
	// fails fast, matching target resolution.
	var cx, cz float64
	if args.Radius != RadiusUnset {
		if args.Radius < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidRadius, args.Radius)
		}
		cx, cz, err = c.resolver.ResolveCenter(args.X, args.Z, src)
		if err != nil {
			return err
		}
	}

	name := "update"
	if force {
		name = "force-update"
	}

	c.runner.Go(src, name, func() error {
		var maps []*atlas.Map
		var world *atlas.World
		if target.World != nil {
			world = target.World
			maps = c.registry.MapsForWorld(world)
		} else {
			world = target.Map.World
			maps = []*atlas.Map{target.Map}
		}

		if len(maps) == 0 {
			return fmt.Errorf("there are no maps configured for world %q", world.Name)
		}

		regions, err := RegionsWithin(world, cx, cz, args.Radius)
		if err != nil {
			return err
		}

		var refs []string
		if force {
			refs = c.controller.ScheduleForceUpdate(maps, regions)
		} else {
			refs = c.controller.ScheduleUpdate(maps, regions)
		}

		for i, m := range maps {
			src.SendMessage(fmt.Sprintf("created update task [%s] for map %q (%d regions)", refs[i], m.ID, len(regions)))
		}
		return nil
	})

	return nil
}

// Purge deletes the rendered output of a map ahead of all other pending work,
// then schedules a full re-render if the map is still configured.
func (c *Commands) Purge(src Source, mapID string) error {
	c.runner.Go(src, "purge", func() error {
		result, err := c.controller.SchedulePurge(mapID, true)
		if err != nil {
			return err
		}

		src.SendMessage(fmt.Sprintf("created purge task [%s] for map %q", result.PurgeRef, mapID))
		if result.Chained {
			src.SendMessage(fmt.Sprintf("created update task [%s] for map %q (%d regions)", result.UpdateRef, mapID, result.Regions))
			src.SendMessage("remove the map from your configuration if you don't want it re-rendered")
		}
		return nil
	})

	return nil
}

// Cancel removes the task behind a reference, or every pending task when the
// reference is empty. Racing against task completion is reported, not
// escalated.
func (c *Commands) Cancel(src Source, ref string) error {
	if ref == "" {
		c.controller.CancelAll()
		src.SendMessage("all tasks cancelled")
		return nil
	}

	err := c.controller.Cancel(ref)
	if errors.Is(err, ErrAlreadyTerminal) {
		src.SendMessage(err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	src.SendMessage(fmt.Sprintf("task [%s] cancelled", ref))
	return nil
}

// Start brings up the render workers.
func (c *Commands) Start(src Source) error {
	if c.manager.IsRunning() {
		return fmt.Errorf("render threads are already running")
	}

	c.manager.Start(c.threads)
	src.SendMessage(fmt.Sprintf("render threads started (%d workers)", c.manager.WorkerThreadCount()))
	return nil
}

// Stop halts the render workers; queued tasks stay queued.
func (c *Commands) Stop(src Source) error {
	if !c.manager.IsRunning() {
		return fmt.Errorf("render threads are already stopped")
	}

	c.manager.Stop()
	src.SendMessage("render threads stopped")
	return nil
}

// DebugRegion reports sector population and modification timestamps of the
// region file at a position, resolved with the usual fallback chain.
func (c *Commands) DebugRegion(src Source, target string, x, z *float64) error {
	resolved, err := c.resolver.ResolveTarget(target, src)
	if err != nil {
		return err
	}

	world := resolved.World
	if world == nil {
		world = resolved.Map.World
	}

	cx, cz, err := c.resolver.ResolveCenter(x, z, src)
	if err != nil {
		return err
	}

	c.runner.Go(src, "debug", func() error {
		reg := atlas.RegionAt(cx, cz)
		path := filepath.Join(world.Path, reg.FileName())

		r, err := region.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		defer r.Close()

		sectors := 0
		var latest int32
		for sx := 0; sx < 32; sx++ {
			for sz := 0; sz < 32; sz++ {
				if _, err := r.ReadSector(sx, sz); errors.Is(err, region.ErrNoSector) {
					continue
				}
				sectors++
				if ts := r.Timestamps[sz][sx]; ts > latest {
					latest = ts
				}
			}
		}

		src.SendMessage(fmt.Sprintf("region %s of world %q: %d/1024 chunks present", reg, world.Name, sectors))
		src.SendMessage(fmt.Sprintf("latest chunk modification: %d", latest))
		return nil
	})

	return nil
}

// CreateMarker adds a labeled marker on a map, at the given or the caller's
// position.
func (c *Commands) CreateMarker(src Source, id, mapID, label string, x, y, z *float64) error {
	if c.markers == nil {
		return fmt.Errorf("no marker store is configured")
	}

	m := c.registry.MapByID(mapID)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrUnresolvedTarget, mapID)
	}

	pos, err := c.resolver.ResolvePosition(x, y, z, src)
	if err != nil {
		return err
	}

	if _, ok, err := c.markers.Get(id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	} else if ok {
		return fmt.Errorf("there already is a marker with the id %q", id)
	}

	err = c.markers.Put(marker.Marker{
		ID:    id,
		MapID: m.ID,
		Label: label,
		X:     pos.X,
		Y:     pos.Y,
		Z:     pos.Z,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	src.SendMessage(fmt.Sprintf("marker %q added", id))
	return nil
}

// RemoveMarker deletes a marker by id.
func (c *Commands) RemoveMarker(src Source, id string) error {
	if c.markers == nil {
		return fmt.Errorf("no marker store is configured")
	}

	removed, err := c.markers.Remove(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !removed {
		return fmt.Errorf("there is no marker with the id %q", id)
	}

	src.SendMessage(fmt.Sprintf("marker %q removed", id))
	return nil
}
