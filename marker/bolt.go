package marker

import (
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var markersBucket = []byte("markers")

// BoltStore keeps markers in a single bbolt file, msgpack-encoded.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(markersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Put(m Marker) error {
	data, err := msgpack.Marshal(&m)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(markersBucket).Put([]byte(m.ID), data)
	})
}

func (s *BoltStore) Get(id string) (Marker, bool, error) {
	var m Marker
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(markersBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return msgpack.Unmarshal(data, &m)
	})

	return m, found, err
}

func (s *BoltStore) Remove(id string) (bool, error) {
	removed := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(markersBucket)
		if bucket.Get([]byte(id)) == nil {
			return nil
		}
		removed = true
		return bucket.Delete([]byte(id))
	})

	return removed, err
}

func (s *BoltStore) List() ([]Marker, error) {
	markers := []Marker{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(markersBucket).ForEach(func(k, v []byte) error {
			var m Marker
			if err := msgpack.Unmarshal(v, &m); err != nil {
				return err
			}
			markers = append(markers, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(markers, func(i, j int) bool {
		return markers[i].ID < markers[j].ID
	})

	return markers, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
