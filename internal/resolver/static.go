package resolver

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/playline/internal/domain/item"
)

// Static resolves items from a fixed ID-to-resolution table. Used by the
// demo binary and as a simple test backend.
type Static struct {
	entries map[string]Resolution
}

// NewStatic creates a static resolver from the given table.
func NewStatic(entries map[string]Resolution) *Static {
	return &Static{entries: entries}
}

// Resolve looks up the item ID in the table.
func (s *Static) Resolve(_ context.Context, it item.Item) (Resolution, error) {
	res, ok := s.entries[it.ID]
	if !ok {
		return Resolution{}, errors.Newf("no resolution for item %s", it.ID)
	}
	return res, nil
}
