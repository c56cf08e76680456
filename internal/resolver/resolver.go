// Package resolver defines the boundary that turns a queue item into a
// playable URL.
package resolver

import (
	"context"
	"time"

	"github.com/osa030/playline/internal/domain/item"
)

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	URL          string        // Streamable resource locator
	DurationHint time.Duration // Expected duration, zero if the backend does not know
}

// Resolver produces a playable URL for an item, possibly asynchronously
// and possibly failing. Implementations must be safe to call repeatedly
// for the same item.
type Resolver interface {
	Resolve(ctx context.Context, it item.Item) (Resolution, error)
}

// Func adapts a plain function to the Resolver interface.
type Func func(ctx context.Context, it item.Item) (Resolution, error)

// Resolve calls f.
func (f Func) Resolve(ctx context.Context, it item.Item) (Resolution, error) {
	return f(ctx, it)
}
