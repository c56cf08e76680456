// Package sink wraps a single underlying audio output.
package sink

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNoSource  = errors.New("no source loaded")
	ErrDisposed  = errors.New("sink disposed")
	ErrBadVolume = errors.New("volume out of range")
)

// Callbacks receives sink lifecycle events. Nil fields are skipped.
// Callbacks are invoked without any sink-internal lock held, so handlers
// may call back into the sink; they are also never invoked synchronously
// from within a Sink method call, so callers may hold their own locks
// across sink calls.
type Callbacks struct {
	OnTime     func(elapsed time.Duration)
	OnDuration func(d time.Duration)
	OnEnded    func()
	OnError    func(err error)
}

// Sink is the single audio output the engine drives. Exactly one source
// is active at a time: Load fully supersedes the previous source.
//
// Play blocks until the transport has actually committed to playing
// (buffered enough to start), not merely until the request was issued.
type Sink interface {
	SetCallbacks(cb Callbacks)
	Load(url string, durationHint time.Duration) error
	Play(ctx context.Context) error
	Pause()
	SetPosition(t time.Duration) error
	SetVolume(v float64) error
	Dispose()
}
