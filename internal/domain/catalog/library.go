package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/osa030/playline/internal/domain/item"
)

// Album groups tracks under a release.
type Album struct {
	Name     string
	Released time.Time
	Tracks   []item.Item
}

// Library is an in-memory Catalog. Albums are ordered newest release
// first with album name as tiebreak; tracks keep their album order.
type Library struct {
	flat []item.Item
}

// NewLibrary builds a library from the given albums. The input slice is
// not retained.
func NewLibrary(albums []Album) *Library {
	sorted := make([]Album, len(albums))
	copy(sorted, albums)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Released.Equal(sorted[j].Released) {
			return sorted[i].Released.After(sorted[j].Released)
		}
		return sorted[i].Name < sorted[j].Name
	})

	var flat []item.Item
	for _, a := range sorted {
		flat = append(flat, a.Tracks...)
	}
	return &Library{flat: flat}
}

// Len returns the number of items in the library.
func (l *Library) Len() int {
	return len(l.flat)
}

// NextAfter returns the items following lastID in library order.
func (l *Library) NextAfter(_ context.Context, lastID string) ([]item.Item, error) {
	for i, it := range l.flat {
		if it.ID == lastID {
			rest := make([]item.Item, len(l.flat)-i-1)
			copy(rest, l.flat[i+1:])
			return rest, nil
		}
	}
	return nil, nil
}

// FromStart returns a copy of the whole library.
func (l *Library) FromStart(_ context.Context) ([]item.Item, error) {
	out := make([]item.Item, len(l.flat))
	copy(out, l.flat)
	return out, nil
}

// Verify Library implements Catalog at compile time.
var _ Catalog = (*Library)(nil)
