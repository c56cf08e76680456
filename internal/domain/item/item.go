// Package item provides the queue item domain entity.
package item

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a single playable unit in the queue.
// The engine treats Payload as opaque caller data and never mutates it.
type Item struct {
	ID           string         `json:"id"`            // Stable identity; items are deduplicated by ID
	Title        string         `json:"title"`         // Display name
	Payload      map[string]any `json:"payload"`       // Arbitrary caller data (text, track metadata, ...)
	ResolvedURL  string         `json:"resolved_url"`  // Memoized resolution result, empty until resolved
	DurationHint time.Duration  `json:"duration_hint"` // Expected duration, zero if unknown
}

// New creates an item with a generated ID.
func New(title string, payload map[string]any) Item {
	return Item{
		ID:      uuid.NewString(),
		Title:   title,
		Payload: payload,
	}
}
