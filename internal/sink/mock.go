package sink

import (
	"context"
	"sync"
	"time"
)

// LoadCall records a Load invocation on the mock.
type LoadCall struct {
	URL  string
	Hint time.Duration
}

// Mock is a scriptable test double for Sink. Lifecycle events are fired
// manually through the Fire helpers.
type Mock struct {
	mu sync.Mutex

	cb        Callbacks
	loads     []LoadCall
	positions []time.Duration
	playCount int
	pauseCnt  int
	volume    float64
	disposed  bool

	loadErr error
	playErr error
	posErr  error

	// When set, Play/Load block until the channel is closed.
	playGate chan struct{}
	loadGate chan struct{}
}

// NewMock creates a mock sink.
func NewMock() *Mock {
	return &Mock{volume: 1}
}

func (m *Mock) SetCallbacks(cb Callbacks) {
	m.mu.Lock()
	m.cb = cb
	m.mu.Unlock()
}

func (m *Mock) Load(url string, hint time.Duration) error {
	m.mu.Lock()
	gate := m.loadGate
	err := m.loadErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.loads = append(m.loads, LoadCall{URL: url, Hint: hint})
	m.mu.Unlock()
	return nil
}

func (m *Mock) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	gate := m.playGate
	err := m.playErr
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.playCount++
	m.mu.Unlock()
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.pauseCnt++
	m.mu.Unlock()
}

func (m *Mock) SetPosition(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.posErr != nil {
		return m.posErr
	}
	m.positions = append(m.positions, t)
	return nil
}

func (m *Mock) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return ErrBadVolume
	}
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()
	return nil
}

func (m *Mock) Dispose() {
	m.mu.Lock()
	m.disposed = true
	m.mu.Unlock()
}

// Test helpers

func (m *Mock) SetLoadError(err error) { m.mu.Lock(); m.loadErr = err; m.mu.Unlock() }
func (m *Mock) SetPlayError(err error) { m.mu.Lock(); m.playErr = err; m.mu.Unlock() }
func (m *Mock) SetPositionError(err error) {
	m.mu.Lock()
	m.posErr = err
	m.mu.Unlock()
}

// GatePlay makes Play block until ReleasePlay is called.
func (m *Mock) GatePlay() {
	m.mu.Lock()
	m.playGate = make(chan struct{})
	m.mu.Unlock()
}

// ReleasePlay unblocks a gated Play.
func (m *Mock) ReleasePlay() {
	m.mu.Lock()
	gate := m.playGate
	m.playGate = nil
	m.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// GateLoad makes Load block until ReleaseLoad is called.
func (m *Mock) GateLoad() {
	m.mu.Lock()
	m.loadGate = make(chan struct{})
	m.mu.Unlock()
}

// ReleaseLoad unblocks a gated Load.
func (m *Mock) ReleaseLoad() {
	m.mu.Lock()
	gate := m.loadGate
	m.loadGate = nil
	m.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (m *Mock) LoadCalls() []LoadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LoadCall, len(m.loads))
	copy(out, m.loads)
	return out
}

func (m *Mock) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCount
}

func (m *Mock) PauseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCnt
}

func (m *Mock) Positions() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.positions))
	copy(out, m.positions)
	return out
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

func (m *Mock) callbacks() Callbacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cb
}

// FireTime simulates a time event.
func (m *Mock) FireTime(elapsed time.Duration) {
	if cb := m.callbacks(); cb.OnTime != nil {
		cb.OnTime(elapsed)
	}
}

// FireDuration simulates the duration becoming known.
func (m *Mock) FireDuration(d time.Duration) {
	if cb := m.callbacks(); cb.OnDuration != nil {
		cb.OnDuration(d)
	}
}

// FireEnded simulates natural end of the current source.
func (m *Mock) FireEnded() {
	if cb := m.callbacks(); cb.OnEnded != nil {
		cb.OnEnded()
	}
}

// FireError simulates a transport error after a source was loaded.
func (m *Mock) FireError(err error) {
	if cb := m.callbacks(); cb.OnError != nil {
		cb.OnError(err)
	}
}

// Verify Mock implements Sink at compile time.
var _ Sink = (*Mock)(nil)
