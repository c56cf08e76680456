package engine

import "github.com/osa030/playline/internal/domain/item"

// EventType represents an engine event type.
type EventType int

const (
	EventItemStarted     EventType = iota // Sink committed to playing an item
	EventItemEnded                        // Item finished naturally
	EventItemSkipped                      // Item skipped by the caller
	EventResolveFailed                    // Resolver rejected or returned no URL
	EventPlaybackFailed                   // Sink reported an error after load
	EventStateChanged                     // Pause/resume/stop/seek
	EventPositionChanged                  // Elapsed time advanced
	EventDurationKnown                    // Sink learned the item duration
	EventQueueReplaced                    // Chain policy swapped the queue
	EventQueueDrained                     // Nothing left to play
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventItemStarted:
		return "item_started"
	case EventItemEnded:
		return "item_ended"
	case EventItemSkipped:
		return "item_skipped"
	case EventResolveFailed:
		return "resolve_failed"
	case EventPlaybackFailed:
		return "playback_failed"
	case EventStateChanged:
		return "state_changed"
	case EventPositionChanged:
		return "position_changed"
	case EventDurationKnown:
		return "duration_known"
	case EventQueueReplaced:
		return "queue_replaced"
	case EventQueueDrained:
		return "queue_drained"
	default:
		return "unknown"
	}
}

// Event represents an engine event. Err is only set on the failure types;
// failures here are informational, the engine has already recovered by
// advancing.
type Event struct {
	Type     EventType
	Item     *item.Item // Affected item (nil for some events)
	Err      error
	Snapshot Snapshot
}
