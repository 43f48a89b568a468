package playback

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerDone
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerDone:
		return "done"
	default:
		return "idle"
	}
}

// ProgressTimer counts down the active story. It is not safe for concurrent
// use: the owner mutates it from a single goroutine and receives completion
// through notify, which is called from the clock's goroutine with the
// generation the countdown was scheduled under. The owner hands that value
// back to Complete.
type ProgressTimer struct {
	clock      clockwork.Clock
	notify     func(generation uint64)
	duration   time.Duration
	elapsed    time.Duration // accumulated before the running segment
	startedAt  time.Time
	state      TimerState
	generation uint64
	pending    clockwork.Timer
}

func NewProgressTimer(clock clockwork.Clock, notify func(generation uint64)) *ProgressTimer {
	return &ProgressTimer{
		clock:  clock,
		notify: notify,
	}
}

// Start counts towards completion over d, continuing from the stored
// elapsed fraction. Calling it on a running or finished timer restarts from 0.
func (t *ProgressTimer) Start(d time.Duration) {
	if d <= 0 {
		panic(invariantf("timer duration must be positive, got %s", d))
	}
	switch t.state {
	case TimerRunning, TimerDone:
		t.elapsed = 0
	default:
		if t.duration > 0 && t.duration != d {
			t.elapsed = time.Duration(t.fraction(t.clock.Now()) * float64(d))
		}
	}
	t.stopPending()
	t.duration = d
	t.run()
}

// Pause freezes the elapsed fraction. Repeated calls are no-ops.
func (t *ProgressTimer) Pause() {
	if t.state != TimerRunning {
		return
	}
	t.stopPending()
	t.elapsed = t.elapsedAt(t.clock.Now())
	t.state = TimerPaused
}

// Resume continues from the frozen fraction over the remaining duration only.
func (t *ProgressTimer) Resume() {
	if t.state != TimerPaused {
		return
	}
	t.run()
}

// Reset stops the countdown, zeroes progress and opens a new generation so
// completions scheduled before the reset are discarded.
func (t *ProgressTimer) Reset() {
	t.stopPending()
	t.generation++
	t.elapsed = 0
	t.state = TimerIdle
}

// Complete accepts a completion signal. It returns true exactly once per
// countdown: the generation must be current, the timer running and the
// full duration elapsed.
func (t *ProgressTimer) Complete(generation uint64) bool {
	if generation != t.generation || t.state != TimerRunning {
		return false
	}
	now := t.clock.Now()
	if t.elapsed+now.Sub(t.startedAt) < t.duration {
		return false
	}
	t.pending = nil
	t.elapsed = t.duration
	t.state = TimerDone
	return true
}

func (t *ProgressTimer) Fraction() float64 {
	return t.fraction(t.clock.Now())
}

func (t *ProgressTimer) State() TimerState {
	return t.state
}

func (t *ProgressTimer) Generation() uint64 {
	return t.generation
}

func (t *ProgressTimer) Duration() time.Duration {
	return t.duration
}

func (t *ProgressTimer) run() {
	t.state = TimerRunning
	t.startedAt = t.clock.Now()
	generation := t.generation
	t.pending = t.clock.AfterFunc(t.duration-t.elapsed, func() {
		t.notify(generation)
	})
}

func (t *ProgressTimer) stopPending() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *ProgressTimer) elapsedAt(now time.Time) time.Duration {
	e := t.elapsed
	if t.state == TimerRunning {
		e += now.Sub(t.startedAt)
	}
	if e > t.duration {
		e = t.duration
	}
	if e < 0 {
		e = 0
	}
	return e
}

func (t *ProgressTimer) fraction(now time.Time) float64 {
	if t.duration <= 0 {
		return 0
	}
	return float64(t.elapsedAt(now)) / float64(t.duration)
}
