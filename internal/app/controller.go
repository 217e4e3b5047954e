package app

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"addition-drill/internal/domain"
)

// State is the controller's position in a drill run.
type State string

const (
	StateIdle            State = "idle"
	StateRunning         State = "running"
	StateAwaitingAdvance State = "awaitingAdvance"
)

// DefaultAutoAdvanceDelay is how long feedback stays visible before auto-advance.
const DefaultAutoAdvanceDelay = 500 * time.Millisecond

const tickInterval = time.Second

// ProblemSource produces the batch for a run.
type ProblemSource interface {
	Generate(cfg domain.SessionConfig) []domain.Problem
}

// Snapshot is a read-only view of the controller, suitable for rendering.
type Snapshot struct {
	State      State                 `json:"state"`
	Epoch      uint64                `json:"epoch"`
	Index      int                   `json:"index"`
	Total      int                   `json:"total"`
	Score      int                   `json:"score"`
	Problem    *domain.Problem       `json:"problem,omitempty"`
	Feedback   *domain.Feedback      `json:"feedback,omitempty"`
	Elapsed    int                   `json:"elapsed"`
	Remaining  int                   `json:"remaining,omitempty"`
	LastRecord *domain.SessionRecord `json:"lastRecord,omitempty"`
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

func WithScheduler(s Scheduler) ControllerOption {
	return func(c *Controller) { c.sched = s }
}

// WithClock is mostly useful in tests for deterministic durations.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

func WithAutoAdvanceDelay(d time.Duration) ControllerOption {
	return func(c *Controller) { c.autoAdvanceDelay = d }
}

// Controller drives a single drill run. Every scheduled callback carries the
// epoch it was armed in; the epoch moves on every start, advance and stop so
// callbacks from an abandoned problem or run fall through as no-ops.
type Controller struct {
	problems         ProblemSource
	history          *History
	sched            Scheduler
	now              func() time.Time
	autoAdvanceDelay time.Duration

	mu          sync.Mutex
	state       State
	cfg         domain.SessionConfig
	batch       []domain.Problem
	index       int
	score       int
	feedback    *domain.Feedback
	startedAt   time.Time
	elapsed     int
	epoch       uint64
	tick        Timer
	pending     Timer
	lastRecord  *domain.SessionRecord
	subscribers map[chan Snapshot]struct{}
}

func NewController(problems ProblemSource, history *History, opts ...ControllerOption) *Controller {
	c := &Controller{
		problems:         problems,
		history:          history,
		sched:            RealScheduler{},
		now:              time.Now,
		autoAdvanceDelay: DefaultAutoAdvanceDelay,
		state:            StateIdle,
		subscribers:      make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a new run, discarding any run in progress without recording it.
func (c *Controller) Start(_ context.Context, cfg domain.SessionConfig) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTimersLocked()
	c.epoch++
	c.cfg = cfg
	c.batch = c.problems.Generate(cfg)
	c.index = 0
	c.score = 0
	c.feedback = nil
	c.lastRecord = nil
	c.startedAt = c.now()
	c.state = StateRunning
	c.enterProblemLocked()

	log.Printf("drill started: %d problems in [%d, %d], %ds per problem", len(c.batch), cfg.Min, cfg.Max, cfg.TimePerProblem)
	return c.broadcastLocked()
}

// SubmitAnswer checks raw against the current problem. Unparseable input
// counts as incorrect. Only the first answer per problem is scored.
func (c *Controller) SubmitAnswer(_ context.Context, raw string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning || c.index >= len(c.batch) || c.feedback != nil {
		return c.snapshotLocked()
	}

	want := c.batch[c.index].Answer()
	got, err := strconv.Atoi(strings.TrimSpace(raw))
	ok := err == nil && got == want

	c.feedback = &domain.Feedback{OK: ok, Correct: want}
	if ok {
		c.score++
	}
	c.stopTickLocked()

	if c.cfg.AutoNext {
		c.state = StateAwaitingAdvance
		epoch := c.epoch
		c.pending = c.sched.AfterFunc(c.autoAdvanceDelay, func() { c.onAutoAdvance(epoch) })
	}
	return c.broadcastLocked()
}

// Advance moves to the next problem, finishing the run after the last one.
func (c *Controller) Advance(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return c.snapshotLocked()
	}
	c.advanceLocked(ctx)
	return c.broadcastLocked()
}

// Stop ends the run early and records it. An empty reason means the user stopped.
func (c *Controller) Stop(ctx context.Context, reason domain.Reason) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return c.snapshotLocked()
	}
	if reason == "" {
		reason = domain.ReasonUser
	}
	c.cancelTimersLocked()
	c.epoch++
	c.finishLocked(ctx, reason)
	return c.broadcastLocked()
}

// Snapshot returns the current view of the run.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change,
// including timer-driven ones. The caller must invoke cancel to avoid leaks.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	// the buffer is still empty, so this cannot block under the lock
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) advanceLocked(ctx context.Context) {
	c.cancelTimersLocked()
	c.epoch++
	c.feedback = nil

	if c.index+1 < len(c.batch) {
		c.index++
		c.state = StateRunning
		c.enterProblemLocked()
		return
	}
	c.finishLocked(ctx, domain.ReasonFinished)
}

func (c *Controller) finishLocked(ctx context.Context, reason domain.Reason) {
	now := c.now()
	duration := int(now.Sub(c.startedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	rec := domain.SessionRecord{
		Date:        now.UTC(),
		Solved:      c.score,
		Total:       len(c.batch),
		DurationSec: duration,
		Reason:      reason,
	}
	c.state = StateIdle
	c.feedback = nil
	c.elapsed = 0
	c.lastRecord = &rec

	c.history.Record(ctx, rec)
	log.Printf("drill ended (%s): %d/%d in %ds", reason, rec.Solved, rec.Total, rec.DurationSec)
}

func (c *Controller) enterProblemLocked() {
	c.elapsed = 0
	if c.cfg.TimePerProblem > 0 && c.index < len(c.batch) {
		c.armTickLocked()
	}
}

func (c *Controller) armTickLocked() {
	epoch := c.epoch
	c.tick = c.sched.AfterFunc(tickInterval, func() { c.onTick(epoch) })
}

func (c *Controller) onTick(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != StateRunning || c.feedback != nil {
		return
	}
	c.tick = nil
	c.elapsed++
	if c.elapsed < c.cfg.TimePerProblem {
		c.armTickLocked()
		c.broadcastLocked()
		return
	}

	c.feedback = &domain.Feedback{OK: false, Correct: c.batch[c.index].Answer(), Expired: true}
	c.broadcastLocked()
	if c.cfg.AutoNext {
		c.advanceLocked(context.Background())
		c.broadcastLocked()
	}
}

func (c *Controller) onAutoAdvance(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != StateAwaitingAdvance {
		return
	}
	c.pending = nil
	c.advanceLocked(context.Background())
	c.broadcastLocked()
}

func (c *Controller) stopTickLocked() {
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
}

func (c *Controller) cancelTimersLocked() {
	c.stopTickLocked()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      c.state,
		Epoch:      c.epoch,
		Index:      c.index,
		Total:      len(c.batch),
		Score:      c.score,
		Elapsed:    c.elapsed,
		LastRecord: c.lastRecord,
	}
	if c.state != StateIdle && c.index < len(c.batch) {
		p := c.batch[c.index]
		snap.Problem = &p
	}
	if c.feedback != nil {
		fb := *c.feedback
		snap.Feedback = &fb
	}
	if c.state == StateRunning && c.feedback == nil && c.cfg.TimePerProblem > 0 && snap.Problem != nil {
		snap.Remaining = c.cfg.TimePerProblem - c.elapsed
	}
	return snap
}

func (c *Controller) broadcastLocked() Snapshot {
	snap := c.snapshotLocked()
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale update so a slow reader never blocks the run
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return snap
}
