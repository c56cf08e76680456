// Package catalog provides the ordered external catalog consulted when the
// explicit queue runs out.
package catalog

import (
	"context"

	"github.com/osa030/playline/internal/domain/item"
)

// Catalog is an ordered collection of items beyond the explicit queue,
// e.g. the remaining tracks of the current album followed by later albums.
// Implementations may be backed by a remote library service and should
// honor the context.
type Catalog interface {
	// NextAfter returns the items strictly after the item with lastID in
	// catalog order. An unknown lastID or a lastID at the very end yields
	// an empty slice.
	NextAfter(ctx context.Context, lastID string) ([]item.Item, error)

	// FromStart returns the full catalog from its first item.
	FromStart(ctx context.Context) ([]item.Item, error)
}
