package chain

import (
	"context"

	"github.com/osa030/playline/internal/domain/item"
)

// LinearStop plays the queue front to back once.
type LinearStop struct{}

// Name returns the policy name.
func (LinearStop) Name() string { return "linear" }

// Next returns the following index, or false past the end.
func (LinearStop) Next(_ context.Context, current int, items []item.Item) (Decision, bool) {
	next := current + 1
	if next >= len(items) {
		return Decision{}, false
	}
	return Decision{Index: next}, true
}

// OnFailure advances like Next.
func (p LinearStop) OnFailure(ctx context.Context, current int, items []item.Item) (Decision, bool) {
	return p.Next(ctx, current, items)
}

// LinearLoop plays the queue front to back and wraps around forever.
type LinearLoop struct{}

// Name returns the policy name.
func (LinearLoop) Name() string { return "loop" }

// Next returns the following index modulo queue length.
func (LinearLoop) Next(_ context.Context, current int, items []item.Item) (Decision, bool) {
	if len(items) == 0 {
		return Decision{}, false
	}
	return Decision{Index: (current + 1) % len(items)}, true
}

// OnFailure advances like Next.
func (p LinearLoop) OnFailure(ctx context.Context, current int, items []item.Item) (Decision, bool) {
	return p.Next(ctx, current, items)
}
