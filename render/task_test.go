package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/b1naryth1ef/atlas"
)

func newTestMap(t *testing.T) *atlas.Map {
	t.Helper()
	return &atlas.Map{
		ID:      "test-map",
		Name:    "Test Map",
		World:   &atlas.World{Name: "test", Path: t.TempDir()},
		TileDir: filepath.Join(t.TempDir(), "tiles", "test-map"),
		State:   atlas.NewRenderState(),
	}
}

func TestUpdateTaskRun(t *testing.T) {
	m := newTestMap(t)
	regions := []atlas.Region{{X: 0, Z: 0}, {X: 1, Z: 0}}

	task := NewUpdateTask(m, regions, NewFlatRenderer())
	if err := task.Run(2); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, region := range regions {
		if m.State.RenderTime(region) == atlas.NeverRendered {
			t.Errorf("region %s should have a render time", region)
		}
		if _, err := os.Stat(filepath.Join(m.TileDir, region.String()+".png")); err != nil {
			t.Errorf("expected tile for %s: %v", region, err)
		}
	}

	// state is persisted alongside the tiles
	if _, err := os.Stat(m.StatePath()); err != nil {
		t.Errorf("expected state file: %v", err)
	}
}

func TestUpdateTaskIDsUnique(t *testing.T) {
	m := newTestMap(t)
	a := NewUpdateTask(m, nil, NewFlatRenderer())
	b := NewUpdateTask(m, nil, NewFlatRenderer())

	if a.ID() == b.ID() {
		t.Error("tasks must have unique ids")
	}
}

type failingRenderer struct{}

func (failingRenderer) RenderRegion(m *atlas.Map, r atlas.Region) error {
	return errors.New("render failed")
}

func TestUpdateTaskReportsRenderFailure(t *testing.T) {
	m := newTestMap(t)

	task := NewUpdateTask(m, []atlas.Region{{X: 0, Z: 0}, {X: 1, Z: 0}}, failingRenderer{})
	if err := task.Run(2); err == nil {
		t.Fatal("expected the render failure to surface")
	}

	// a failed pass must not persist state
	if _, err := os.Stat(m.StatePath()); !os.IsNotExist(err) {
		t.Error("state file should not be written after a failure")
	}
}

func TestPurgeTaskRun(t *testing.T) {
	m := newTestMap(t)

	task := NewUpdateTask(m, []atlas.Region{{X: 0, Z: 0}}, NewFlatRenderer())
	if err := task.Run(1); err != nil {
		t.Fatalf("update: %v", err)
	}

	purge := NewPurgeTask(m)
	if err := purge.Run(1); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := os.Stat(m.TileDir); !os.IsNotExist(err) {
		t.Error("tile directory should be deleted")
	}
	if m.State.RegionCount() != 0 {
		t.Error("render state should be reset")
	}
}

func TestPathPurgeTaskRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "orphan")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		t.Fatal(err)
	}

	purge := NewPathPurgeTask(dir)
	if err := purge.Run(1); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should be deleted")
	}
}
