// Package resume provides session-scoped playback resumption: a structured
// snapshot written at the boundary on state changes and read back at
// construction.
package resume

import (
	"time"

	"github.com/osa030/playline/internal/domain/item"
)

// Snapshot is the persisted session state.
type Snapshot struct {
	Items   []item.Item   `json:"items"`
	Index   int           `json:"index"`
	Elapsed time.Duration `json:"elapsed"`
}

// Store persists and restores a single session snapshot.
type Store interface {
	Save(s Snapshot) error
	Load() (Snapshot, bool, error)
	Close() error
}
