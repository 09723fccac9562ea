package render

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/b1naryth1ef/atlas"
	"github.com/google/uuid"
)

// TileRenderer produces the rendered output for a single region of a map. The
// actual tile pipeline lives behind this interface; the control plane only
// schedules it.
type TileRenderer interface {
	RenderRegion(m *atlas.Map, r atlas.Region) error
}

// Task is a unit of queued render work. Tasks are created by the control
// layer, owned by the Manager once submitted, and run exactly once. The
// manager executes tasks one at a time; threads is the parallelism a task may
// use internally.
type Task interface {
	ID() string
	Description() string
	Run(threads int) error
}

// UpdateTask renders a fixed set of regions of one map, recording the render
// timestamp per region as it goes.
type UpdateTask struct {
	id       string
	Map      *atlas.Map
	Regions  []atlas.Region
	renderer TileRenderer
}

func NewUpdateTask(m *atlas.Map, regions []atlas.Region, renderer TileRenderer) *UpdateTask {
	return &UpdateTask{
		id:       uuid.NewString(),
		Map:      m,
		Regions:  regions,
		renderer: renderer,
	}
}

func (t *UpdateTask) ID() string {
	return t.id
}

func (t *UpdateTask) Description() string {
	return fmt.Sprintf("update %s (%d regions)", t.Map.ID, len(t.Regions))
}

func (t *UpdateTask) Run(threads int) error {
	if threads <= 0 {
		threads = 1
	}

	guard := make(chan struct{}, threads)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	for _, region := range t.Regions {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		guard <- struct{}{}
		wg.Add(1)
		go func(region atlas.Region) {
			defer wg.Done()
			defer func() {
				<-guard
			}()

			err := t.renderer.RenderRegion(t.Map, region)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("render %s %s: %w", t.Map.ID, region, err)
				}
				mu.Unlock()
				return
			}

			t.Map.State.SetRenderTime(region, time.Now().Unix())
		}(region)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return t.Map.SaveState()
}

// PurgeTask deletes the rendered output of a map. Map is nil when purging a
// leftover tile folder whose map is no longer configured.
type PurgeTask struct {
	id   string
	Map  *atlas.Map
	Path string
}

func NewPurgeTask(m *atlas.Map) *PurgeTask {
	return &PurgeTask{
		id:   uuid.NewString(),
		Map:  m,
		Path: m.TileDir,
	}
}

// NewPathPurgeTask purges a raw tile directory without a configured map.
func NewPathPurgeTask(path string) *PurgeTask {
	return &PurgeTask{
		id:   uuid.NewString(),
		Path: path,
	}
}

func (t *PurgeTask) ID() string {
	return t.id
}

func (t *PurgeTask) Description() string {
	if t.Map != nil {
		return fmt.Sprintf("purge %s", t.Map.ID)
	}
	return fmt.Sprintf("purge %s", t.Path)
}

func (t *PurgeTask) Run(threads int) error {
	err := os.RemoveAll(t.Path)
	if err != nil {
		return fmt.Errorf("purge %s: %w", t.Path, err)
	}

	if t.Map != nil {
		t.Map.State.Reset()
	}

	return nil
}
