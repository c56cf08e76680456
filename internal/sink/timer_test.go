package sink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_PlayEmitsEndedAfterDuration(t *testing.T) {
	s := NewTimer(5 * time.Millisecond)
	defer s.Dispose()

	var mu sync.Mutex
	var times []time.Duration
	ended := make(chan struct{})
	s.SetCallbacks(Callbacks{
		OnTime: func(e time.Duration) {
			mu.Lock()
			times = append(times, e)
			mu.Unlock()
		},
		OnEnded: func() { close(ended) },
	})

	require.NoError(t, s.Load("https://media.local/a", 40*time.Millisecond))
	require.NoError(t, s.Play(context.Background()))

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ended")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, times)
	assert.Equal(t, 40*time.Millisecond, times[len(times)-1])
}

func TestTimer_PauseFreezesElapsed(t *testing.T) {
	s := NewTimer(5 * time.Millisecond)
	defer s.Dispose()

	require.NoError(t, s.Load("https://media.local/a", time.Hour))
	require.NoError(t, s.Play(context.Background()))
	time.Sleep(30 * time.Millisecond)
	s.Pause()

	frozen := s.Elapsed()
	assert.Greater(t, frozen, time.Duration(0))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, s.Elapsed())
}

func TestTimer_SetPositionClamps(t *testing.T) {
	s := NewTimer(0)
	defer s.Dispose()

	require.NoError(t, s.Load("https://media.local/a", time.Minute))

	require.NoError(t, s.SetPosition(2*time.Minute))
	assert.Equal(t, time.Minute, s.Elapsed())

	require.NoError(t, s.SetPosition(-time.Second))
	assert.Equal(t, time.Duration(0), s.Elapsed())
}

func TestTimer_LoadRequiresDurationHint(t *testing.T) {
	s := NewTimer(0)
	defer s.Dispose()

	assert.ErrorIs(t, s.Load("https://media.local/a", 0), ErrNoSource)
	assert.ErrorIs(t, s.Load("", time.Minute), ErrNoSource)
}

func TestTimer_LoadDeliversDurationOffCaller(t *testing.T) {
	s := NewTimer(0)
	defer s.Dispose()

	var mu sync.Mutex
	got := make(chan time.Duration, 1)
	s.SetCallbacks(Callbacks{OnDuration: func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		got <- d
	}})

	// Load is called with a caller-side lock held; a synchronous
	// callback delivery would deadlock here.
	mu.Lock()
	require.NoError(t, s.Load("https://media.local/a", time.Minute))
	mu.Unlock()

	select {
	case d := <-got:
		assert.Equal(t, time.Minute, d)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for duration")
	}
}

func TestTimer_PlayWithoutSource(t *testing.T) {
	s := NewTimer(0)
	defer s.Dispose()

	assert.ErrorIs(t, s.Play(context.Background()), ErrNoSource)
}

func TestTimer_DisposeRejectsUse(t *testing.T) {
	s := NewTimer(0)
	s.Dispose()

	assert.ErrorIs(t, s.Load("https://media.local/a", time.Minute), ErrDisposed)
	assert.ErrorIs(t, s.Play(context.Background()), ErrDisposed)
}

func TestTimer_SetVolumeRange(t *testing.T) {
	s := NewTimer(0)
	defer s.Dispose()

	assert.NoError(t, s.SetVolume(0.5))
	assert.ErrorIs(t, s.SetVolume(1.5), ErrBadVolume)
	assert.ErrorIs(t, s.SetVolume(-0.1), ErrBadVolume)
}
