package control

import (
	"fmt"
	"os"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/render"
)

// Controller is the orchestration point for every mutating render command:
// it force-invalidates render state, builds tasks and submits or removes them
// against the manager. It never waits for task completion.
type Controller struct {
	registry *atlas.Registry
	manager  Manager
	renderer render.TileRenderer
	refs     *RefRegistry
	dataPath string
}

func NewController(registry *atlas.Registry, manager Manager, renderer render.TileRenderer, dataPath string) *Controller {
	return &Controller{
		registry: registry,
		manager:  manager,
		renderer: renderer,
		refs:     NewRefRegistry(manager),
		dataPath: dataPath,
	}
}

func (c *Controller) Refs() *RefRegistry {
	return c.refs
}

// ScheduleUpdate builds one update task per map over the given regions and
// submits them in call order. Returns one task reference per map.
func (c *Controller) ScheduleUpdate(maps []*atlas.Map, regions []atlas.Region) []string {
	refs := make([]string, 0, len(maps))
	for _, m := range maps {
		t := render.NewUpdateTask(m, regions, c.renderer)
		c.manager.Submit(t, false)
		refs = append(refs, c.refs.RefFor(t))
	}
	return refs
}

// ScheduleForceUpdate invalidates each map's render state for every region
// first and only then submits the update task. The invalidation completes
// before the manager can hand the task to a worker, so no reader ever
// observes a submitted task whose regions still carry old render times. Maps
// are independent units; each one is invalidated and submitted on its own.
func (c *Controller) ScheduleForceUpdate(maps []*atlas.Map, regions []atlas.Region) []string {
	refs := make([]string, 0, len(maps))
	for _, m := range maps {
		for _, region := range regions {
			m.State.Invalidate(region)
		}

		t := render.NewUpdateTask(m, regions, c.renderer)
		c.manager.Submit(t, false)
		refs = append(refs, c.refs.RefFor(t))
	}
	return refs
}

// PurgeResult describes the tasks a purge produced.
type PurgeResult struct {
	MapID     string
	PurgeRef  string
	UpdateRef string
	Regions   int
	Chained   bool
}

// SchedulePurge submits a purge task ahead of all other pending work for the
// map's tile directory. With chained set and the map still configured, a
// follow-up full update is submitted in normal order behind it, so a fresh
// render replaces the purged output. A map id that is no longer configured
// purges the raw tile folder instead. Path resolution failures leave the
// queue and all render state untouched.
func (c *Controller) SchedulePurge(mapID string, chained bool) (*PurgeResult, error) {
	m := c.registry.MapByID(mapID)

	dir := atlas.MapTileDir(c.dataPath, mapID)
	if m != nil {
		dir = m.TileDir
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: there is no map data for %q", ErrStorageUnavailable, mapID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrStorageUnavailable, dir)
	}

	// Resolve everything the chained update needs before the purge task is
	// submitted, so a failure here leaves nothing queued.
	var regions []atlas.Region
	if chained && m != nil {
		regions, err = RegionsWithin(m.World, 0, 0, RadiusUnset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	var purge render.Task
	if m != nil {
		purge = render.NewPurgeTask(m)
	} else {
		purge = render.NewPathPurgeTask(dir)
	}

	c.manager.Submit(purge, true)

	result := &PurgeResult{
		MapID:    mapID,
		PurgeRef: c.refs.RefFor(purge),
	}

	if chained && m != nil {
		update := render.NewUpdateTask(m, regions, c.renderer)
		c.manager.Submit(update, false)
		result.UpdateRef = c.refs.RefFor(update)
		result.Regions = len(regions)
		result.Chained = true
	}

	return result, nil
}

// Cancel removes the queued task a reference points at. ErrUnknownRef means
// the reference never existed or its task already left the manager;
// ErrAlreadyTerminal means the task completed or was cancelled between
// resolution and removal. Neither is escalated by callers, so cancelling the
// same reference twice is harmless.
func (c *Controller) Cancel(ref string) error {
	c.refs.ForceRefresh()

	t, ok := c.refs.Resolve(ref)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}

	if !c.manager.Remove(t) {
		return ErrAlreadyTerminal
	}
	return nil
}

// CancelAll removes every pending task in a single step.
func (c *Controller) CancelAll() {
	c.manager.RemoveAll()
	c.refs.ForceRefresh()
}

// TaskInfo is one live task as shown to operators.
type TaskInfo struct {
	Ref         string
	Description string
}

// Status is a point-in-time view of the render pool.
type Status struct {
	Running       bool
	WorkerThreads int
	Tasks         []TaskInfo
}

// Status reports whether the pool is running, its worker count and the
// currently tracked tasks. The pool itself is owned by the manager; this only
// relays.
func (c *Controller) Status() Status {
	c.refs.ForceRefresh()

	tasks := c.manager.Tasks()
	infos := make([]TaskInfo, 0, len(tasks))
	for _, t := range tasks {
		infos = append(infos, TaskInfo{
			Ref:         c.refs.RefFor(t),
			Description: t.Description(),
		})
	}

	return Status{
		Running:       c.manager.IsRunning(),
		WorkerThreads: c.manager.WorkerThreadCount(),
		Tasks:         infos,
	}
}
