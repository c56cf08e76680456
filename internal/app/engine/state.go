// Package engine provides the playback sequencing engine: queue ownership,
// the phase state machine, and advancement through a chain policy.
package engine

// Phase represents the engine phase.
type Phase int

const (
	PhaseIdle      Phase = iota // Nothing active (empty queue, exhausted, or stopped)
	PhaseResolving              // Waiting for a URL or for the sink to commit
	PhasePlaying                // Sink committed to playing
	PhasePaused                 // Frozen mid-item
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}
