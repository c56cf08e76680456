// Package chain provides the pluggable next-item strategies applied when
// the current item finishes or fails.
package chain

import (
	"context"

	"github.com/osa030/playline/internal/domain/item"
)

// Decision names the next item to play.
type Decision struct {
	// Index into the active queue, or into Replace when it is non-nil.
	Index int
	// Replace, when non-nil, supersedes the whole queue. The engine swaps
	// queue and index atomically so the pair stays consistent.
	Replace []item.Item
}

// Policy decides what plays after the item at current. current is -1 when
// playback starts from nothing. The second return is false when there is
// nothing left to play.
//
// Policies are consulted from the engine's advancement path only, one call
// at a time; implementations may keep per-session state (shuffle order).
type Policy interface {
	// Name returns the policy name (used in config).
	Name() string

	// Next picks the item after a natural end.
	Next(ctx context.Context, current int, items []item.Item) (Decision, bool)

	// OnFailure picks the item after a resolution or playback failure of
	// the item at current. Every bundled policy treats a failure exactly
	// like a natural end, so one bad item never stalls the queue.
	OnFailure(ctx context.Context, current int, items []item.Item) (Decision, bool)
}
