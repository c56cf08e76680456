package resume

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketName = []byte("playline")
	sessionKey = []byte("session")
)

// BoltStore persists the session snapshot in a local bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open resume store")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create resume bucket")
	}
	return &BoltStore{db: db}, nil
}

// Save writes the snapshot, replacing any previous one.
func (s *BoltStore) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(sessionKey, data)
	})
}

// Load reads the stored snapshot. The second return is false when none
// has been saved yet.
func (s *BoltStore) Load() (Snapshot, bool, error) {
	var data []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get(sessionKey); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return Snapshot{}, false, errors.Wrap(err, "failed to read snapshot")
	}
	if data == nil {
		return Snapshot{}, false, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, errors.Wrap(err, "failed to decode snapshot")
	}
	return snap, true, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Verify BoltStore implements Store at compile time.
var _ Store = (*BoltStore)(nil)
