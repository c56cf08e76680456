package chain

import (
	"context"
	"math/rand"

	"github.com/osa030/playline/internal/domain/item"
)

// Shuffle walks a pre-materialized permutation of the queue. The order is
// stable for the session and wraps at the end; Rearm draws a fresh one.
type Shuffle struct {
	rng  *rand.Rand
	perm []int
	pos  int
}

// NewShuffle creates a shuffle policy seeded for reproducibility in tests.
func NewShuffle(seed int64) *Shuffle {
	return &Shuffle{rng: rand.New(rand.NewSource(seed))}
}

// Name returns the policy name.
func (s *Shuffle) Name() string { return "shuffle" }

// Rearm draws a fresh Fisher-Yates permutation over n positions.
func (s *Shuffle) Rearm(n int) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	s.perm = perm
	s.pos = -1
}

// Next advances through the permutation, wrapping at the end. A queue
// length change implicitly re-arms.
func (s *Shuffle) Next(_ context.Context, _ int, items []item.Item) (Decision, bool) {
	if len(items) == 0 {
		return Decision{}, false
	}
	if len(s.perm) != len(items) {
		s.Rearm(len(items))
	}
	s.pos = (s.pos + 1) % len(s.perm)
	return Decision{Index: s.perm[s.pos]}, true
}

// OnFailure advances like Next.
func (s *Shuffle) OnFailure(ctx context.Context, current int, items []item.Item) (Decision, bool) {
	return s.Next(ctx, current, items)
}

// Order returns the current permutation (for inspection).
func (s *Shuffle) Order() []int {
	out := make([]int, len(s.perm))
	copy(out, s.perm)
	return out
}
