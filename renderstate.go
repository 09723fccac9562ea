package atlas

import (
	"encoding/json"
	"os"
	"sync"
)

// NeverRendered is the render timestamp of a region that has no (valid)
// rendered output, either because it was never rendered or because it was
// force-invalidated.
const NeverRendered int64 = -1

// RenderState records the last successful render timestamp per region of one
// map. It is written by the render workers on completion and by
// force-invalidation, possibly at the same time, so all access is serialized
// here.
type RenderState struct {
	mu    sync.RWMutex
	times map[Region]int64
}

func NewRenderState() *RenderState {
	return &RenderState{
		times: make(map[Region]int64),
	}
}

// RenderTime returns the last successful render timestamp for a region, or
// NeverRendered.
func (s *RenderState) RenderTime(r Region) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.times[r]; ok {
		return t
	}
	return NeverRendered
}

func (s *RenderState) SetRenderTime(r Region, t int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times[r] = t
}

// Invalidate marks a region as never rendered.
func (s *RenderState) Invalidate(r Region) {
	s.SetRenderTime(r, NeverRendered)
}

// Reset drops all recorded timestamps.
func (s *RenderState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = make(map[Region]int64)
}

// RegionCount returns the number of regions with a recorded timestamp.
func (s *RenderState) RegionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.times)
}

type renderStateFile struct {
	RegionTimestamps map[string]int64 `json:"region_timestamps"`
}

// Save writes the state as a JSON sidecar file.
func (s *RenderState) Save(path string) error {
	file := renderStateFile{RegionTimestamps: make(map[string]int64)}

	s.mu.RLock()
	for r, t := range s.times {
		file.RegionTimestamps[r.String()] = t
	}
	s.mu.RUnlock()

	data, err := json.Marshal(&file)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, os.ModePerm)
}

// LoadRenderState reads a previously saved state file. Unknown keys are
// skipped.
func LoadRenderState(path string) (*RenderState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file renderStateFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		return nil, err
	}

	state := NewRenderState()
	for name, t := range file.RegionTimestamps {
		if r, ok := ParseRegionName(name); ok {
			state.times[r] = t
		}
	}
	return state, nil
}
