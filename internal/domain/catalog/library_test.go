package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playline/internal/domain/item"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testLibrary() *Library {
	return NewLibrary([]Album{
		{
			Name:     "Early Works",
			Released: date(2019, time.March, 1),
			Tracks: []item.Item{
				{ID: "e1", Title: "Dawn"},
				{ID: "e2", Title: "Dusk"},
			},
		},
		{
			Name:     "Latest",
			Released: date(2024, time.June, 10),
			Tracks: []item.Item{
				{ID: "l1", Title: "Opener"},
				{ID: "l2", Title: "Closer"},
			},
		},
	})
}

func ids(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestLibrary_OrdersAlbumsByReleaseDateDesc(t *testing.T) {
	lib := testLibrary()

	all, err := lib.FromStart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2", "e1", "e2"}, ids(all))
}

func TestLibrary_NameTiebreakOnEqualRelease(t *testing.T) {
	released := date(2022, time.January, 1)
	lib := NewLibrary([]Album{
		{Name: "Zebra", Released: released, Tracks: []item.Item{{ID: "z1"}}},
		{Name: "Aardvark", Released: released, Tracks: []item.Item{{ID: "a1"}}},
	})

	all, err := lib.FromStart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "z1"}, ids(all))
}

func TestLibrary_NextAfter(t *testing.T) {
	lib := testLibrary()
	ctx := context.Background()

	tests := []struct {
		name     string
		lastID   string
		expected []string
	}{
		{name: "mid album", lastID: "l1", expected: []string{"l2", "e1", "e2"}},
		{name: "album boundary", lastID: "l2", expected: []string{"e1", "e2"}},
		{name: "last item", lastID: "e2", expected: []string{}},
		{name: "unknown id", lastID: "nope", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, err := lib.NextAfter(ctx, tt.lastID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(rest))
		})
	}
}

func TestLibrary_FromStartReturnsCopy(t *testing.T) {
	lib := testLibrary()

	first, err := lib.FromStart(context.Background())
	require.NoError(t, err)
	first[0].Title = "mutated"

	again, err := lib.FromStart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Opener", again[0].Title)
}
