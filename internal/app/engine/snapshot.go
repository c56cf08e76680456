package engine

import "time"

// Snapshot is the read model exposed for rendering and transport
// controls, recomputed on every transition.
type Snapshot struct {
	Index       int
	Phase       Phase
	IsPlaying   bool
	IsPaused    bool
	IsResolving bool
	Elapsed     time.Duration
	Duration    time.Duration
	QueueLength int
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Index:       e.index,
		Phase:       e.phase,
		IsPlaying:   e.phase == PhasePlaying,
		IsPaused:    e.phase == PhasePaused,
		IsResolving: e.phase == PhaseResolving,
		Elapsed:     e.elapsed,
		Duration:    e.duration,
		QueueLength: e.queue.Len(),
	}
}

// Snapshot returns the current read model.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}
