package control

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/render"
)

// fakeSource records messages and optionally carries a location.
type fakeSource struct {
	mu       sync.Mutex
	world    *atlas.World
	position *Position
	messages []string
}

func (s *fakeSource) World() *atlas.World {
	return s.world
}

func (s *fakeSource) Position() (Position, bool) {
	if s.position == nil {
		return Position{}, false
	}
	return *s.position, true
}

func (s *fakeSource) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *fakeSource) HasPermission(perm string) bool {
	return true
}

func (s *fakeSource) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.messages...)
}

// stubManager is an in-memory Manager that never executes anything. With
// failRemove set, tasks stay visible but can no longer be removed, like a
// task a worker already picked up.
type stubManager struct {
	mu         sync.Mutex
	queue      []render.Task
	running    bool
	threads    int
	failRemove bool
	onSubmit   func(t render.Task, front bool)
}

func (m *stubManager) Submit(t render.Task, front bool) {
	if m.onSubmit != nil {
		m.onSubmit(t, front)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if front {
		m.queue = append([]render.Task{t}, m.queue...)
	} else {
		m.queue = append(m.queue, t)
	}
}

func (m *stubManager) Remove(t render.Task) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRemove {
		return false
	}
	for i, queued := range m.queue {
		if queued.ID() == t.ID() {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (m *stubManager) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
}

func (m *stubManager) Tasks() []render.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]render.Task{}, m.queue...)
}

func (m *stubManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *stubManager) Start(threads int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.threads = threads
}

func (m *stubManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.threads = 0
}

func (m *stubManager) WorkerThreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threads
}

// nopRenderer satisfies render.TileRenderer without touching disk.
type nopRenderer struct{}

func (nopRenderer) RenderRegion(m *atlas.Map, r atlas.Region) error {
	return nil
}

// testWorld creates a world whose region directory holds the given regions.
func testWorld(t *testing.T, name string, regions ...atlas.Region) *atlas.World {
	t.Helper()

	dir := t.TempDir()
	for _, region := range regions {
		err := os.WriteFile(filepath.Join(dir, region.FileName()), []byte("x"), os.ModePerm)
		if err != nil {
			t.Fatalf("write region file: %v", err)
		}
	}

	return &atlas.World{Name: name, Path: dir}
}

// testEnv is a fully wired control plane over a stub or real manager.
type testEnv struct {
	registry   *atlas.Registry
	manager    Manager
	controller *Controller
	commands   *Commands
	runner     *Runner
	dataPath   string
}

func newTestEnv(t *testing.T, manager Manager) *testEnv {
	t.Helper()

	dataPath := t.TempDir()
	world := testWorld(t, "alpha", atlas.Region{X: 0, Z: 0}, atlas.Region{X: 1, Z: 0})

	m := &atlas.Map{
		ID:      "alpha-overworld",
		Name:    "Alpha Overworld",
		World:   world,
		TileDir: atlas.MapTileDir(dataPath, "alpha-overworld"),
		State:   atlas.NewRenderState(),
	}

	registry := &atlas.Registry{
		Worlds: []*atlas.World{world},
		Maps:   []*atlas.Map{m},
	}

	runner := NewRunner()
	controller := NewController(registry, manager, nopRenderer{}, dataPath)
	commands := NewCommands(registry, controller, manager, nil, runner, 2)

	return &testEnv{
		registry:   registry,
		manager:    manager,
		controller: controller,
		commands:   commands,
		runner:     runner,
		dataPath:   dataPath,
	}
}
