package atlas

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegionFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), os.ModePerm); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestWorldRegions(t *testing.T) {
	dir := t.TempDir()
	writeRegionFiles(t, dir, "r.1.0.mca", "r.0.0.mca", "r.-1.2.mca", "notes.txt")

	// empty region files are skipped
	if err := os.WriteFile(filepath.Join(dir, "r.9.9.mca"), nil, os.ModePerm); err != nil {
		t.Fatal(err)
	}

	world := &World{Name: "test", Path: dir}
	regions, err := world.Regions()
	if err != nil {
		t.Fatalf("regions: %v", err)
	}

	expected := []Region{{-1, 2}, {0, 0}, {1, 0}}
	if len(regions) != len(expected) {
		t.Fatalf("expected %d regions, got %d: %v", len(expected), len(regions), regions)
	}
	for i, r := range expected {
		if regions[i] != r {
			t.Errorf("expected region %v at %d, got %v", r, i, regions[i])
		}
	}
}

func TestLoadWorldStableUUID(t *testing.T) {
	dir := t.TempDir()

	a, err := LoadWorld("alpha", dir)
	if err != nil {
		t.Fatalf("load world: %v", err)
	}

	b, err := LoadWorld("alpha", dir)
	if err != nil {
		t.Fatalf("load world: %v", err)
	}

	if a.UUID != b.UUID {
		t.Errorf("world UUID should be stable across loads: %s != %s", a.UUID, b.UUID)
	}

	other, err := LoadWorld("beta", t.TempDir())
	if err != nil {
		t.Fatalf("load world: %v", err)
	}
	if a.UUID == other.UUID {
		t.Error("different save paths must produce different UUIDs")
	}
}

func TestLoadWorldMissingPath(t *testing.T) {
	_, err := LoadWorld("gone", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing region directory")
	}
}
