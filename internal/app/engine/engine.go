package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playline/internal/app/chain"
	"github.com/osa030/playline/internal/domain/item"
	"github.com/osa030/playline/internal/resolver"
	"github.com/osa030/playline/internal/resume"
	"github.com/osa030/playline/internal/sink"
)

// Errors
var (
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrNoItem          = errors.New("no item active")
	ErrNotPlaying      = errors.New("not playing")
	ErrSeekUnavailable = errors.New("seek unavailable")
)

// Config holds engine configuration.
type Config struct {
	EventBuffer    int           // Event channel capacity
	ResolveTimeout time.Duration // Per-item resolution deadline
}

func (c Config) withDefaults() Config {
	if c.EventBuffer <= 0 {
		c.EventBuffer = 16
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = 30 * time.Second
	}
	return c
}

// Reporter receives fire-and-forget play completion notifications.
// Reporter failures never affect engine state.
type Reporter interface {
	ItemFinished(it item.Item, played time.Duration)
}

// Engine owns the queue, the current position, and the phase state
// machine. It reacts to sink events and transport commands, drives
// resolver calls, and advances through the chain policy at end of item.
//
// Every mutation happens under mu. Blocking work (resolution, sink play
// commitment, policy catalog lookups) runs off-lock and re-enters under
// the lock, validated against the generation token captured at dispatch;
// Stop and queue replacement bump the token synchronously, so a late
// completion is a guaranteed no-op.
type Engine struct {
	mu sync.Mutex

	queue     *item.Queue
	index     int // -1 = none; only meaningful against the queue it was set with
	phase     Phase
	elapsed   time.Duration
	duration  time.Duration
	playedIDs map[string]bool
	resumeAt  time.Duration // Position to restore on the next commit

	// Generation token. gen counts invalidations; genCtx cancels blocking
	// work dispatched for the current generation. sinkGen records which
	// generation's source the sink currently holds, so a stale play commit
	// is only undone while the sink is still ours.
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc
	sinkGen   uint64

	// policyMu serializes policy consultation: policies may keep
	// per-session state and are never entered concurrently.
	policyMu sync.Mutex

	snk      sink.Sink
	resolver resolver.Resolver
	policy   chain.Policy
	reporter Reporter
	store    resume.Store

	config  Config
	eventCh chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
}

// Option configures the engine.
type Option func(*Engine)

// WithReporter attaches a play completion reporter.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithResume attaches a session store. A stored snapshot restores the
// queue and position at construction; playback resumes on Play.
func WithResume(store resume.Store) Option {
	return func(e *Engine) { e.store = store }
}

// New creates an engine driving the given sink.
func New(cfg Config, snk sink.Sink, res resolver.Resolver, pol chain.Policy, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		queue:     item.NewQueue(),
		index:     -1,
		phase:     PhaseIdle,
		playedIDs: make(map[string]bool),
		snk:       snk,
		resolver:  res,
		policy:    pol,
		config:    cfg,
		eventCh:   make(chan Event, cfg.EventBuffer),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.restore()

	snk.SetCallbacks(sink.Callbacks{
		OnTime:     e.onSinkTime,
		OnDuration: e.onSinkDuration,
		OnEnded:    e.onSinkEnded,
		OnError:    e.onSinkError,
	})
	return e
}

// Events returns the event channel.
func (e *Engine) Events() <-chan Event {
	return e.eventCh
}

// Add appends an item to the queue, deduplicated by ID. When the engine
// is idle (not paused) playback auto-starts from
// the first unplayed position.
func (e *Engine) Add(it item.Item) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := e.queue.Append(it)
	if e.phase == PhaseIdle {
		if idx := e.queue.FirstUnplayed(e.playedIDs); idx >= 0 {
			e.startLocked(idx)
		}
	}
	return added
}

// AddAll appends multiple items, then auto-starts like Add.
func (e *Engine) AddAll(items []item.Item) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, it := range items {
		if e.queue.Append(it) {
			added++
		}
	}
	if e.phase == PhaseIdle {
		if idx := e.queue.FirstUnplayed(e.playedIDs); idx >= 0 {
			e.startLocked(idx)
		}
	}
	return added
}

// Replace swaps the whole queue (switching album or playlist context).
// Any in-flight resolution is invalidated. When the engine was active,
// playback restarts at the new queue's first item.
func (e *Engine) Replace(items []item.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasActive := e.phase == PhasePlaying || e.phase == PhasePaused || e.phase == PhaseResolving

	e.invalidateLocked()
	e.snk.Pause()
	e.queue = item.From(items)
	e.playedIDs = make(map[string]bool)
	e.index = -1
	e.elapsed = 0
	e.duration = 0
	e.sendLocked(EventQueueReplaced, nil, nil)

	if wasActive && e.queue.Len() > 0 {
		e.startLocked(0)
	} else {
		e.phase = PhaseIdle
	}
	e.persistLocked()
}

// Play starts or resumes playback. From paused it resumes in place
// without re-resolution; from idle it starts at the first
// unplayed item (wrapping to the top when everything has played).
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case PhasePlaying, PhaseResolving:
		return nil
	case PhasePaused:
		gen := e.gen
		ctx := e.playCtxLocked()
		go e.commitResume(gen, ctx)
		return nil
	default:
		if e.queue.Len() == 0 {
			return ErrQueueEmpty
		}
		idx := e.queue.FirstUnplayed(e.playedIDs)
		if idx < 0 {
			e.playedIDs = make(map[string]bool)
			idx = 0
		}
		e.startLocked(idx)
		return nil
	}
}

// Pause freezes the current item. Position and duration are preserved;
// no resolution or advancement happens while paused.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index < 0 {
		return ErrNoItem
	}
	if e.phase != PhasePlaying {
		return ErrNotPlaying
	}

	e.snk.Pause()
	e.phase = PhasePaused
	e.sendLocked(EventStateChanged, e.currentLocked(), nil)
	e.persistLocked()
	return nil
}

// Stop halts playback, resets the transport, and detaches from the
// queue, landing back in idle. Any in-flight resolution result is
// discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.invalidateLocked()
	e.snk.Pause()
	_ = e.snk.SetPosition(0)
	e.index = -1
	e.phase = PhaseIdle
	e.elapsed = 0
	e.duration = 0
	e.sendLocked(EventStateChanged, nil, nil)
	e.persistLocked()
}

// Skip abandons the current item and advances through the chain policy.
// The skipped item is not reported as finished.
func (e *Engine) Skip() error {
	e.mu.Lock()

	if e.index < 0 {
		e.mu.Unlock()
		return ErrNoItem
	}

	skipped := e.currentLocked()
	idx := e.index
	e.invalidateLocked()
	e.snk.Pause()
	e.phase = PhaseResolving
	e.elapsed = 0
	e.duration = 0
	gen := e.gen
	e.sendLocked(EventItemSkipped, skipped, nil)
	e.mu.Unlock()

	go e.advance(gen, idx, false)
	return nil
}

// SeekTo moves within the current item, clamped to [0, duration].
// Rejected while no item is loaded or the duration is still unknown.
func (e *Engine) SeekTo(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index < 0 || (e.phase != PhasePlaying && e.phase != PhasePaused) {
		return ErrSeekUnavailable
	}
	if e.duration <= 0 {
		return ErrSeekUnavailable
	}

	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}
	if err := e.snk.SetPosition(pos); err != nil {
		return ErrSeekUnavailable
	}
	e.elapsed = pos
	e.sendLocked(EventStateChanged, e.currentLocked(), nil)
	e.persistLocked()
	return nil
}

// SetVolume forwards the volume to the sink.
func (e *Engine) SetVolume(v float64) error {
	return e.snk.SetVolume(v)
}

// Current returns the active item, false when none.
func (e *Engine) Current() (item.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	it := e.currentLocked()
	if it == nil {
		return item.Item{}, false
	}
	return *it, true
}

// Items returns a copy of the active queue.
func (e *Engine) Items() []item.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Items()
}

// Close releases the sink and discards any in-flight work.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.invalidateLocked()
	close(e.eventCh)
	e.mu.Unlock()

	e.cancel()
	e.snk.Dispose()
}

// --- internal ---

func (e *Engine) currentLocked() *item.Item {
	it, ok := e.queue.At(e.index)
	if !ok {
		return nil
	}
	return &it
}

// invalidateLocked bumps the generation token and cancels blocking work
// dispatched for the previous generation.
func (e *Engine) invalidateLocked() {
	e.gen++
	if e.genCancel != nil {
		e.genCancel()
		e.genCancel = nil
		e.genCtx = nil
	}
}

func (e *Engine) playCtxLocked() context.Context {
	if e.genCtx != nil {
		return e.genCtx
	}
	return e.ctx
}

// startLocked begins resolving the item at idx. At most one resolution is
// in flight: starting a new one invalidates the previous generation.
func (e *Engine) startLocked(idx int) {
	it, ok := e.queue.At(idx)
	if !ok {
		zlog.Warn().Int("index", idx).Msg("engine: start index out of range")
		e.drainLocked()
		return
	}

	e.invalidateLocked()
	e.genCtx, e.genCancel = context.WithCancel(e.ctx)

	e.index = idx
	e.phase = PhaseResolving
	e.elapsed = 0
	e.duration = it.DurationHint

	zlog.Debug().Int("index", idx).Str("item", it.ID).Msg("engine: resolving")
	go e.resolveAndPlay(e.gen, e.genCtx, idx, it)
}

// resolveAndPlay runs the blocking resolve-load-commit sequence for one
// generation. Every re-entry under the lock is validated against gen.
func (e *Engine) resolveAndPlay(gen uint64, ctx context.Context, idx int, it item.Item) {
	res, err := e.resolveItem(ctx, it)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		zlog.Debug().Str("item", it.ID).Msg("engine: discarding stale resolution")
		return
	}
	if err != nil {
		zlog.Warn().Err(err).Str("item", it.ID).Msg("engine: resolution failed, skipping item")
		e.sendLocked(EventResolveFailed, &it, err)
		e.mu.Unlock()
		e.advance(gen, idx, true)
		return
	}

	e.queue.SetResolvedURL(idx, res.URL)
	hint := res.DurationHint
	if hint <= 0 {
		hint = it.DurationHint
	}
	if hint > 0 {
		e.duration = hint
	}

	// The load happens under the lock, atomically with the generation
	// check above: an invalidation can never interleave and let a stale
	// source supersede the one loaded by the current generation.
	if err := e.snk.Load(res.URL, hint); err != nil {
		zlog.Warn().Err(err).Str("item", it.ID).Msg("engine: sink load failed, skipping item")
		e.sendLocked(EventPlaybackFailed, &it, err)
		e.mu.Unlock()
		e.advance(gen, idx, true)
		return
	}
	e.sinkGen = gen
	e.mu.Unlock()

	// Blocks until the transport commits to playing.
	if err := e.snk.Play(ctx); err != nil {
		e.mu.Lock()
		if gen != e.gen || errors.Is(err, context.Canceled) {
			e.mu.Unlock()
			return
		}
		zlog.Warn().Err(err).Str("item", it.ID).Msg("engine: play failed, skipping item")
		e.sendLocked(EventPlaybackFailed, &it, err)
		e.mu.Unlock()
		e.advance(gen, idx, true)
		return
	}

	e.mu.Lock()
	if gen != e.gen {
		// The commit landed after a stop or replacement. Undo it, but
		// only while the sink still holds this generation's source; once
		// a newer generation has loaded, pausing would break its playback.
		if e.sinkGen == gen {
			e.snk.Pause()
		}
		e.mu.Unlock()
		return
	}

	e.phase = PhasePlaying
	if e.resumeAt > 0 {
		pos := e.resumeAt
		if e.duration > 0 && pos > e.duration {
			pos = e.duration
		}
		if err := e.snk.SetPosition(pos); err == nil {
			e.elapsed = pos
		}
		e.resumeAt = 0
	}
	zlog.Debug().Int("index", idx).Str("item", it.ID).Msg("engine: playing")
	e.sendLocked(EventItemStarted, &it, nil)
	e.persistLocked()
	e.mu.Unlock()
}

func (e *Engine) resolveItem(ctx context.Context, it item.Item) (resolver.Resolution, error) {
	rctx, cancel := context.WithTimeout(ctx, e.config.ResolveTimeout)
	defer cancel()

	res, err := e.resolver.Resolve(rctx, it)
	if err != nil {
		return resolver.Resolution{}, err
	}
	if res.URL == "" {
		return resolver.Resolution{}, errors.New("resolver returned no url")
	}
	return res, nil
}

// commitResume re-commits the sink after a pause.
func (e *Engine) commitResume(gen uint64, ctx context.Context) {
	err := e.snk.Play(ctx)

	e.mu.Lock()
	if gen != e.gen || e.phase != PhasePaused {
		if err == nil && e.sinkGen == gen {
			e.snk.Pause()
		}
		e.mu.Unlock()
		return
	}
	if err != nil {
		it := e.currentLocked()
		idx := e.index
		zlog.Warn().Err(err).Msg("engine: resume failed, skipping item")
		e.sendLocked(EventPlaybackFailed, it, err)
		e.mu.Unlock()
		e.advance(gen, idx, true)
		return
	}

	e.phase = PhasePlaying
	e.sendLocked(EventStateChanged, e.currentLocked(), nil)
	e.persistLocked()
	e.mu.Unlock()
}

// advance consults the chain policy for what follows the item at from.
// Failures advance exactly like natural ends; each attempt costs one
// resolver round trip, so a queue of bad items drains without a tight
// retry loop.
func (e *Engine) advance(gen uint64, from int, failed bool) {
	e.policyMu.Lock()
	defer e.policyMu.Unlock()

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	items := e.queue.Items()
	ctx := e.playCtxLocked()
	e.mu.Unlock()

	var dec chain.Decision
	var ok bool
	if failed {
		dec, ok = e.policy.OnFailure(ctx, from, items)
	} else {
		dec, ok = e.policy.Next(ctx, from, items)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}

	if !ok {
		e.drainLocked()
		return
	}

	if dec.Replace != nil {
		e.queue = item.From(dec.Replace)
		e.playedIDs = make(map[string]bool)
		e.sendLocked(EventQueueReplaced, nil, nil)
	}
	e.startLocked(dec.Index)
}

// drainLocked parks the engine once there is nothing left to play.
// Indistinguishable from normal completion by design of the state model.
func (e *Engine) drainLocked() {
	e.invalidateLocked()
	e.snk.Pause()
	_ = e.snk.SetPosition(0)
	e.index = -1
	e.phase = PhaseIdle
	e.elapsed = 0
	e.duration = 0
	e.sendLocked(EventQueueDrained, nil, nil)
	e.persistLocked()
}

// --- sink callbacks ---

func (e *Engine) onSinkTime(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhasePlaying {
		return
	}
	e.elapsed = elapsed
	e.sendLocked(EventPositionChanged, nil, nil)
}

func (e *Engine) onSinkDuration(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index < 0 {
		return
	}
	e.duration = d
	e.sendLocked(EventDurationKnown, e.currentLocked(), nil)
}

func (e *Engine) onSinkEnded() {
	e.mu.Lock()

	if e.phase != PhasePlaying {
		e.mu.Unlock()
		return
	}

	it := e.currentLocked()
	if it == nil {
		e.mu.Unlock()
		return
	}
	played := e.elapsed
	e.playedIDs[it.ID] = true
	e.reportFinished(*it, played)
	e.sendLocked(EventItemEnded, it, nil)
	e.persistLocked()

	gen := e.gen
	idx := e.index
	e.phase = PhaseResolving
	e.elapsed = 0
	e.mu.Unlock()

	go e.advance(gen, idx, false)
}

func (e *Engine) onSinkError(err error) {
	e.mu.Lock()

	if e.phase != PhasePlaying {
		e.mu.Unlock()
		return
	}

	it := e.currentLocked()
	zlog.Warn().Err(err).Msg("engine: sink error, skipping item")
	e.sendLocked(EventPlaybackFailed, it, err)

	gen := e.gen
	idx := e.index
	e.phase = PhaseResolving
	e.elapsed = 0
	e.mu.Unlock()

	go e.advance(gen, idx, true)
}

// --- side channels ---

// reportFinished notifies the reporter on its own goroutine; a panicking
// or slow reporter cannot stall or corrupt the engine.
func (e *Engine) reportFinished(it item.Item, played time.Duration) {
	if e.reporter == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zlog.Warn().Interface("panic", r).Msg("engine: reporter panicked")
			}
		}()
		e.reporter.ItemFinished(it, played)
	}()
}

func (e *Engine) persistLocked() {
	if e.store == nil {
		return
	}
	snap := resume.Snapshot{
		Items:   e.queue.Items(),
		Index:   e.index,
		Elapsed: e.elapsed,
	}
	if err := e.store.Save(snap); err != nil {
		zlog.Warn().Err(err).Msg("engine: failed to persist session")
	}
}

// restore loads a stored session at construction. Items before the
// stored index count as played so Play picks up where the session left
// off; playback itself stays parked until the caller asks for it.
func (e *Engine) restore() {
	if e.store == nil {
		return
	}
	snap, ok, err := e.store.Load()
	if err != nil {
		zlog.Warn().Err(err).Msg("engine: failed to restore session")
		return
	}
	if !ok || len(snap.Items) == 0 {
		return
	}

	e.queue = item.From(snap.Items)
	if snap.Index > 0 && snap.Index < e.queue.Len() {
		for i := 0; i < snap.Index; i++ {
			if it, ok := e.queue.At(i); ok {
				e.playedIDs[it.ID] = true
			}
		}
	}
	if snap.Elapsed > 0 {
		e.resumeAt = snap.Elapsed
	}
	zlog.Info().Int("items", e.queue.Len()).Int("index", snap.Index).Msg("engine: restored session")
}

// sendLocked emits an event without blocking. Must be called with the
// lock held.
func (e *Engine) sendLocked(t EventType, it *item.Item, err error) {
	if e.closed {
		return
	}
	ev := Event{Type: t, Item: it, Err: err, Snapshot: e.snapshotLocked()}
	select {
	case e.eventCh <- ev:
	default:
		// Buffer full, drop. Snapshots are self-contained so consumers
		// recover on the next event.
	}
}
