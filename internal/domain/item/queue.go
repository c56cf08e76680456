package item

// Queue is an ordered sequence of items. Insertion order defines the
// intended playback order. Append deduplicates by item ID.
//
// Queue is not safe for concurrent use; the owning engine serializes
// access. When a queue is superseded (album switch, catalog chaining)
// the old instance is never mutated again, so an index captured against
// it stays meaningful.
type Queue struct {
	items []Item
	ids   map[string]struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		items: make([]Item, 0),
		ids:   make(map[string]struct{}),
	}
}

// From creates a queue from the given items, dropping duplicate IDs
// while preserving first-occurrence order.
func From(items []Item) *Queue {
	q := NewQueue()
	for _, it := range items {
		q.Append(it)
	}
	return q
}

// Append adds an item to the end of the queue.
// Returns false if an item with the same ID is already present.
func (q *Queue) Append(it Item) bool {
	if q.Contains(it.ID) {
		return false
	}
	q.items = append(q.items, it)
	q.ids[it.ID] = struct{}{}
	return true
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	return len(q.items)
}

// At returns the item at the given position.
func (q *Queue) At(i int) (Item, bool) {
	if i < 0 || i >= len(q.items) {
		return Item{}, false
	}
	return q.items[i], true
}

// Contains reports whether an item with the given ID is queued.
func (q *Queue) Contains(id string) bool {
	_, ok := q.ids[id]
	return ok
}

// Items returns a copy of the queued items.
func (q *Queue) Items() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// SetResolvedURL memoizes a resolution result on the item at the given
// position. URLs may survive replays, so this is never cleared implicitly.
func (q *Queue) SetResolvedURL(i int, url string) {
	if i < 0 || i >= len(q.items) {
		return
	}
	q.items[i].ResolvedURL = url
}

// FirstUnplayed returns the position of the first item whose ID is not in
// played, -1 when every item has been played or the queue is empty.
func (q *Queue) FirstUnplayed(played map[string]bool) int {
	for i, it := range q.items {
		if !played[it.ID] {
			return i
		}
	}
	return -1
}
