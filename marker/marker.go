package marker

// Marker is a labeled point of interest pinned to a map.
type Marker struct {
	ID    string  `msgpack:"id" json:"id"`
	MapID string  `msgpack:"map_id" json:"mapId"`
	Label string  `msgpack:"label" json:"label"`
	X     float64 `msgpack:"x" json:"x"`
	Y     float64 `msgpack:"y" json:"y"`
	Z     float64 `msgpack:"z" json:"z"`
}

// Store persists markers. Implementations must be safe for concurrent use;
// commands run on independent goroutines.
type Store interface {
	Put(m Marker) error
	Get(id string) (Marker, bool, error)
	Remove(id string) (bool, error)
	List() ([]Marker, error)
	Close() error
}
