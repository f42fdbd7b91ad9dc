package fetch

import (
	"math/rand/v2"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultBaseDelay = time.Second
	defaultMaxDelay  = 10 * time.Second
)

// Backoff computes the delay before a retry.
//
// DelayFor(n) = min(Base * 2^n, Cap). Jitter in (0, 1] shortens each delay by
// up to that fraction, so the cap still holds; with Jitter zero the sequence is
// deterministic and non-decreasing.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter float64

	// Rand returns values in [0, 1). Nil uses math/rand/v2.
	Rand func() float64
}

// DefaultBackoff yields 1s, 2s, 4s, 8s, 10s, 10s, ...
var DefaultBackoff = Backoff{Base: defaultBaseDelay, Cap: defaultMaxDelay}

// DelayFor returns the delay before retry n, counting from zero.
func (b Backoff) DelayFor(n int) time.Duration {
	base, limit := b.Base, b.Cap
	if base <= 0 {
		base = defaultBaseDelay
	}
	if limit <= 0 {
		limit = defaultMaxDelay
	}
	if n < 0 {
		n = 0
	}

	d := base
	for i := 0; i < n && d < limit; i++ {
		d *= 2
	}
	if d > limit {
		d = limit
	}

	if b.Jitter > 0 {
		j := b.Jitter
		if j > 1 {
			j = 1
		}
		rnd := b.Rand
		if rnd == nil {
			rnd = rand.Float64
		}
		d -= time.Duration(float64(d) * j * rnd())
	}
	return d
}

// Scheduler owns at most one pending retry timer.
type Scheduler struct {
	clock   Clock
	seq     uint64
	pending *pendingTimer
}

type pendingTimer struct {
	token uint64
	timer Timer
	done  chan struct{}
}

// NewScheduler returns a scheduler drawing timers from clock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{clock: clock}
}

// Arm cancels any pending timer and schedules a new one. The returned command
// yields fire(token) once d elapses, or nil if the timer was canceled first.
func (s *Scheduler) Arm(d time.Duration, fire func(token uint64) tea.Msg) tea.Cmd {
	s.Cancel()
	s.seq++
	p := &pendingTimer{
		token: s.seq,
		timer: s.clock.NewTimer(d),
		done:  make(chan struct{}),
	}
	s.pending = p

	return func() tea.Msg {
		select {
		case <-p.done:
			return nil
		case <-p.timer.C():
		}
		select {
		case <-p.done:
			return nil
		default:
			return fire(p.token)
		}
	}
}

// Owns reports whether token belongs to the currently pending timer.
func (s *Scheduler) Owns(token uint64) bool {
	return s.pending != nil && s.pending.token == token
}

// Pending reports whether a timer is armed.
func (s *Scheduler) Pending() bool {
	return s.pending != nil
}

// Cancel stops the pending timer, if any. Safe to call repeatedly.
func (s *Scheduler) Cancel() {
	if s.pending == nil {
		return
	}
	s.pending.timer.Stop()
	close(s.pending.done)
	s.pending = nil
}
