package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playline/internal/domain/item"
)

func TestCached_MemoizesSuccess(t *testing.T) {
	calls := 0
	inner := Func(func(_ context.Context, it item.Item) (Resolution, error) {
		calls++
		return Resolution{URL: "https://media.local/" + it.ID, DurationHint: 3 * time.Minute}, nil
	})

	c := NewCached(inner)
	it := item.Item{ID: "song1"}

	first, err := c.Resolve(context.Background(), it)
	require.NoError(t, err)
	second, err := c.Resolve(context.Background(), it)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	calls := 0
	inner := Func(func(_ context.Context, _ item.Item) (Resolution, error) {
		calls++
		if calls == 1 {
			return Resolution{}, errors.New("backend unavailable")
		}
		return Resolution{URL: "https://media.local/ok"}, nil
	})

	c := NewCached(inner)
	it := item.Item{ID: "song1"}

	_, err := c.Resolve(context.Background(), it)
	require.Error(t, err)

	res, err := c.Resolve(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, "https://media.local/ok", res.URL)
	assert.Equal(t, 2, calls)
}

func TestCached_Invalidate(t *testing.T) {
	calls := 0
	inner := Func(func(_ context.Context, _ item.Item) (Resolution, error) {
		calls++
		return Resolution{URL: "https://media.local/x"}, nil
	})

	c := NewCached(inner)
	it := item.Item{ID: "song1"}

	_, err := c.Resolve(context.Background(), it)
	require.NoError(t, err)

	c.Invalidate("song1")

	_, err = c.Resolve(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestStatic_Resolve(t *testing.T) {
	s := NewStatic(map[string]Resolution{
		"known": {URL: "https://media.local/known.mp3", DurationHint: time.Minute},
	})

	res, err := s.Resolve(context.Background(), item.Item{ID: "known"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.local/known.mp3", res.URL)

	_, err = s.Resolve(context.Background(), item.Item{ID: "unknown"})
	assert.Error(t, err)
}
