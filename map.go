package atlas

import (
	"os"
	"path/filepath"
)

// Map is one configured rendered view of a world. Maps own their render state
// and the directory their tiles are written to.
type Map struct {
	ID      string
	Name    string
	World   *World
	TileDir string
	State   *RenderState
}

func (m *Map) StatePath() string {
	return filepath.Join(m.TileDir, "state.json")
}

// SaveState persists the map's render state next to its tiles.
func (m *Map) SaveState() error {
	err := os.MkdirAll(m.TileDir, os.ModePerm)
	if err != nil {
		return err
	}
	return m.State.Save(m.StatePath())
}
