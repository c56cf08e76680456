package sink

import (
	"context"
	"sync"
	"time"
)

const defaultTick = 100 * time.Millisecond

// Timer is a Sink for sources with a known duration: instead of decoding
// audio it advances a wall clock and synthesizes the lifecycle events.
// This is the playback model of a server that delegates actual audio
// output to clients, and the backend of the demo binary.
type Timer struct {
	mu sync.Mutex

	cb   Callbacks
	tick time.Duration

	url         string
	duration    time.Duration
	elapsedBase time.Duration
	startedAt   time.Time
	playing     bool
	disposed    bool
	volume      float64

	cancel context.CancelFunc
}

// NewTimer creates a timer sink. A non-positive tick falls back to 100ms.
func NewTimer(tick time.Duration) *Timer {
	if tick <= 0 {
		tick = defaultTick
	}
	return &Timer{tick: tick, volume: 1}
}

// SetCallbacks registers the event callbacks.
func (t *Timer) SetCallbacks(cb Callbacks) {
	t.mu.Lock()
	t.cb = cb
	t.mu.Unlock()
}

// Load replaces the current source. The duration hint is mandatory for a
// timer source since there is no media to probe.
func (t *Timer) Load(url string, durationHint time.Duration) error {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return ErrDisposed
	}
	if url == "" || durationHint <= 0 {
		t.mu.Unlock()
		return ErrNoSource
	}
	t.stopLocked()
	t.playing = false
	t.url = url
	t.duration = durationHint
	t.elapsedBase = 0
	cb := t.cb
	t.mu.Unlock()

	if cb.OnDuration != nil {
		// Delivered off the caller's goroutine; the engine calls Load
		// while holding its own lock.
		go cb.OnDuration(durationHint)
	}
	return nil
}

// Play starts (or resumes) the clock. A timer source has nothing to
// buffer, so commitment is immediate.
func (t *Timer) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed {
		return ErrDisposed
	}
	if t.url == "" {
		return ErrNoSource
	}
	if t.playing {
		return nil
	}

	t.playing = true
	t.startedAt = wallNow()

	runCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.run(runCtx)

	return nil
}

// Pause freezes the clock, keeping the current position.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.playing {
		return
	}
	elapsed := t.elapsedBase + wallNow().Sub(t.startedAt)
	if elapsed > t.duration {
		elapsed = t.duration
	}
	t.elapsedBase = elapsed
	t.playing = false
	t.stopLocked()
}

// SetPosition moves the clock, clamped to the source duration.
func (t *Timer) SetPosition(pos time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.url == "" {
		return ErrNoSource
	}
	if pos < 0 {
		pos = 0
	}
	if pos > t.duration {
		pos = t.duration
	}
	t.elapsedBase = pos
	if t.playing {
		t.startedAt = wallNow()
	}
	return nil
}

// SetVolume stores the volume. A timer sink produces no audio, but the
// contract is kept so callers can swap in a real output.
func (t *Timer) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return ErrBadVolume
	}
	t.mu.Lock()
	t.volume = v
	t.mu.Unlock()
	return nil
}

// Elapsed returns the current clock position.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return t.elapsedBase
	}
	elapsed := t.elapsedBase + wallNow().Sub(t.startedAt)
	if elapsed > t.duration {
		return t.duration
	}
	return elapsed
}

// Dispose stops the clock and rejects further use.
func (t *Timer) Dispose() {
	t.mu.Lock()
	t.stopLocked()
	t.disposed = true
	t.mu.Unlock()
}

func (t *Timer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Timer) run(ctx context.Context) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			if !t.playing {
				t.mu.Unlock()
				return
			}
			elapsed := t.elapsedBase + wallNow().Sub(t.startedAt)
			ended := elapsed >= t.duration
			if ended {
				elapsed = t.duration
				t.elapsedBase = t.duration
				t.playing = false
				t.stopLocked()
			}
			cb := t.cb
			t.mu.Unlock()

			// Callbacks run without the sink lock so handlers may call back in.
			if cb.OnTime != nil {
				cb.OnTime(elapsed)
			}
			if ended {
				if cb.OnEnded != nil {
					cb.OnEnded()
				}
				return
			}
		}
	}
}

// wallNow returns the current time with the monotonic reading stripped,
// so elapsed playback tracks the wall clock even when the monotonic
// clock drifts.
func wallNow() time.Time {
	now := time.Now()
	return time.Unix(now.Unix(), int64(now.Nanosecond()))
}

// Verify Timer implements Sink at compile time.
var _ Sink = (*Timer)(nil)
