package fetch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ledgerview/internal/connectivity"
)

// State is the lifecycle state of a fetch.
type State int

const (
	Idle State = iota
	Loading
	Retrying
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Retrying:
		return "retrying"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// DefaultMaxRetries is the retry budget after the first attempt.
const DefaultMaxRetries = 3

// Fetcher loads the resource identified by key.
type Fetcher[K comparable, R any] func(ctx context.Context, key K) (R, error)

// Connectivity is the platform online/offline signal.
// *connectivity.Signal implements it.
type Connectivity interface {
	Online() bool
	Subscribe() (<-chan connectivity.Event, func())
}

// Options configure a Controller. The zero value is usable.
type Options struct {
	// Context parents every fetch. Nil uses context.Background.
	Context context.Context

	// MaxRetries is the retry budget; zero uses DefaultMaxRetries and a
	// negative value disables retries.
	MaxRetries int

	// Backoff zero value behaves like DefaultBackoff.
	Backoff    Backoff
	Classifier Classifier
	Clock      Clock

	// Connectivity is optional; without it the controller assumes online.
	Connectivity Connectivity

	// AttemptTimeout bounds each fetch attempt when positive.
	AttemptTimeout time.Duration

	Logger *slog.Logger

	// OnChange runs on every published status change.
	OnChange func(from, to Status)
	// OnStale runs whenever a superseded result or timer is dropped.
	OnStale func()
}

// Status is what the presentation layer renders.
type Status struct {
	State  State
	Reason Reason
	// Err is the classified *Error for Retrying and Failed.
	Err error
	// Attempt is the retry ordinal: the pending retry while Retrying, the
	// retry in flight while Loading, zero for the first try.
	Attempt        int
	MaxAttempts    int
	NextRetryDelay time.Duration
	NextRetryAt    time.Time
	Offline        bool
}

// RetriesExhausted reports whether the fetch failed because the budget ran out.
func (s Status) RetriesExhausted() bool {
	return s.State == Failed && IsRetriesExhausted(s.Err)
}

// Remaining returns the time left until the pending retry fires.
func (s Status) Remaining(now time.Time) time.Duration {
	if s.State != Retrying || s.NextRetryAt.IsZero() {
		return 0
	}
	if left := s.NextRetryAt.Sub(now); left > 0 {
		return left
	}
	return 0
}

// Snapshot is the status plus the resource it concerns.
type Snapshot[K comparable, R any] struct {
	Status
	Key K
	// Resource is the last successfully loaded value for Key.
	Resource R
}

type attemptContext[K comparable] struct {
	seq      uint64
	key      K
	attempt  int
	lastErr  error
	inFlight bool
	cancel   context.CancelFunc
	sched    *Scheduler
}

type resultMsg[K comparable, R any] struct {
	owner uint64
	seq   uint64
	res   R
	err   error
}

type retryMsg struct {
	owner uint64
	seq   uint64
	token uint64
}

type connectivityMsg struct {
	owner uint64
	ev    connectivity.Event
}

var controllerIDs atomic.Uint64

// Controller loads one resource at a time, retrying transient failures.
//
// A Controller belongs to a single Bubble Tea update loop: call its methods
// only from Init/Update of the owning model and feed every message to Update.
type Controller[K comparable, R any] struct {
	id         uint64
	fetch      Fetcher[K, R]
	ctx        context.Context
	maxRetries int
	backoff    Backoff
	classify   Classifier
	clock      Clock
	conn       Connectivity
	timeout    time.Duration
	log        *slog.Logger
	onChange   func(from, to Status)
	onStale    func()

	events      <-chan connectivity.Event
	unsubscribe func()

	guard  Guard
	active *attemptContext[K]
	snap   Snapshot[K, R]
}

// New builds a controller around fetcher. It panics if fetcher is nil.
func New[K comparable, R any](fetcher Fetcher[K, R], opts Options) *Controller[K, R] {
	if fetcher == nil {
		panic("fetch: fetcher cannot be nil")
	}

	c := &Controller[K, R]{
		id:       controllerIDs.Add(1),
		fetch:    fetcher,
		ctx:      opts.Context,
		backoff:  opts.Backoff,
		classify: opts.Classifier,
		clock:    opts.Clock,
		conn:     opts.Connectivity,
		timeout:  opts.AttemptTimeout,
		log:      opts.Logger,
		onChange: opts.OnChange,
		onStale:  opts.OnStale,
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	switch {
	case opts.MaxRetries == 0:
		c.maxRetries = DefaultMaxRetries
	case opts.MaxRetries > 0:
		c.maxRetries = opts.MaxRetries
	}
	if c.classify == nil {
		c.classify = Classify
	}
	if c.clock == nil {
		c.clock = RealClock()
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.conn != nil {
		c.events, c.unsubscribe = c.conn.Subscribe()
		c.snap.Offline = !c.conn.Online()
	}
	c.snap.MaxAttempts = c.maxRetries
	return c
}

// Init starts listening for connectivity events. Call it once.
func (c *Controller[K, R]) Init() tea.Cmd {
	return c.listen()
}

// Snapshot returns the current state and resource.
func (c *Controller[K, R]) Snapshot() Snapshot[K, R] {
	return c.snap
}

// Status returns the current state without the resource.
func (c *Controller[K, R]) Status() Status {
	return c.snap.Status
}

// Request starts a fresh fetch of key, superseding whatever came before.
// The previous timer is canceled and its context is stale once Request returns.
func (c *Controller[K, R]) Request(key K) tea.Cmd {
	if c.guard.Disposed() {
		return nil
	}
	c.discard()

	if c.snap.Key != key {
		var zero R
		c.snap.Resource = zero
	}
	c.snap.Key = key
	c.active = &attemptContext[K]{
		seq:   c.guard.Bind(),
		key:   key,
		sched: NewScheduler(c.clock),
	}
	c.log.Debug("fetch requested", slog.Any("key", key))
	return c.issue()
}

// RetryNow skips any remaining backoff and restarts the current key with a
// fresh retry budget. It does nothing before the first Request.
func (c *Controller[K, R]) RetryNow() tea.Cmd {
	if c.guard.Disposed() || c.snap.State == Idle {
		return nil
	}
	c.log.Info("manual retry", slog.Any("key", c.snap.Key))
	return c.Request(c.snap.Key)
}

// Update applies controller messages and ignores everything else.
func (c *Controller[K, R]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resultMsg[K, R]:
		if msg.owner != c.id {
			return nil
		}
		return c.handleResult(msg)
	case retryMsg:
		if msg.owner != c.id {
			return nil
		}
		return c.handleRetry(msg)
	case connectivityMsg:
		if msg.owner != c.id || c.guard.Disposed() {
			return nil
		}
		return tea.Batch(c.listen(), c.handleConnectivity(msg.ev))
	}
	return nil
}

// Dispose cancels the pending timer and in-flight fetch, stops listening for
// connectivity, and turns every later result into a no-op. Safe to repeat.
func (c *Controller[K, R]) Dispose() {
	if !c.guard.Dispose() {
		return
	}
	c.discard()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.log.Debug("fetch controller disposed")
}

func (c *Controller[K, R]) listen() tea.Cmd {
	if c.events == nil || c.guard.Disposed() {
		return nil
	}
	events, owner := c.events, c.id
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return connectivityMsg{owner: owner, ev: ev}
	}
}

// discard releases the active attempt context.
func (c *Controller[K, R]) discard() {
	ac := c.active
	if ac == nil {
		return
	}
	ac.sched.Cancel()
	if ac.cancel != nil {
		ac.cancel()
		ac.cancel = nil
	}
	c.active = nil
}

func (c *Controller[K, R]) online() bool {
	return c.conn == nil || c.conn.Online()
}

// issue enters Loading and returns the command performing the fetch.
func (c *Controller[K, R]) issue() tea.Cmd {
	ac := c.active
	if ac == nil || ac.inFlight {
		return nil
	}
	if !c.online() {
		return c.fail(ac, classification(&Error{Kind: KindOffline, Err: ErrOffline}))
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	ac.inFlight = true
	ac.cancel = cancel

	c.transition(func(s *Status) {
		s.State = Loading
		s.Attempt = ac.attempt
		s.NextRetryDelay = 0
		s.NextRetryAt = time.Time{}
		if ac.attempt == 0 {
			s.Reason = ReasonNone
			s.Err = nil
		}
	})
	c.log.Debug("fetch attempt", slog.Any("key", ac.key), slog.Int("attempt", ac.attempt))

	fetch, key, owner, seq := c.fetch, ac.key, c.id, ac.seq
	return func() tea.Msg {
		defer cancel()
		res, err := fetch(ctx, key)
		return resultMsg[K, R]{owner: owner, seq: seq, res: res, err: err}
	}
}

func (c *Controller[K, R]) handleResult(msg resultMsg[K, R]) tea.Cmd {
	ac := c.active
	if c.guard.IsStale(msg.seq) || ac == nil || ac.seq != msg.seq || !ac.inFlight {
		c.dropStale("result")
		return nil
	}
	ac.inFlight = false
	if ac.cancel != nil {
		ac.cancel()
		ac.cancel = nil
	}

	if msg.err == nil {
		c.discard()
		c.snap.Resource = msg.res
		c.transition(func(s *Status) {
			s.State = Success
			s.Reason = ReasonNone
			s.Err = nil
			s.NextRetryDelay = 0
			s.NextRetryAt = time.Time{}
		})
		c.log.Info("fetch succeeded", slog.Any("key", ac.key), slog.Int("attempt", ac.attempt))
		return nil
	}

	cl := c.classify(msg.err)
	if cl.Err == nil {
		cl.Err = &Error{Kind: KindUnknown, Err: msg.err}
	}
	if cl.Reason == ReasonNone {
		cl.Reason = cl.Err.Kind.Reason()
	}
	if cl.Err.Kind == KindTransport && !c.online() {
		cl = classification(&Error{Kind: KindOffline, Err: cl.Err})
	}
	return c.fail(ac, cl)
}

// fail routes a classified failure to Retrying or Failed.
func (c *Controller[K, R]) fail(ac *attemptContext[K], cl Classification) tea.Cmd {
	ac.lastErr = cl.Err

	switch {
	case cl.Err.Kind == KindOffline:
		// Deferred until connectivity returns; no budget consumed.
		ac.sched.Cancel()
		c.transition(func(s *Status) {
			s.State = Retrying
			s.Reason = ReasonOffline
			s.Err = cl.Err
			s.Attempt = ac.attempt
			s.NextRetryDelay = 0
			s.NextRetryAt = time.Time{}
		})
		c.log.Warn("fetch deferred while offline", slog.Any("key", ac.key), slog.Int("attempt", ac.attempt))
		return nil

	case !cl.Retryable:
		c.transition(func(s *Status) {
			s.State = Failed
			s.Reason = cl.Reason
			s.Err = cl.Err
			s.Attempt = ac.attempt
			s.NextRetryDelay = 0
			s.NextRetryAt = time.Time{}
		})
		c.log.Warn("fetch failed", slog.Any("key", ac.key), slog.String("reason", string(cl.Reason)), slog.Any("error", cl.Err))
		return nil

	case ac.attempt >= c.maxRetries:
		exhausted := &Error{Kind: KindMaxRetries, Attempts: ac.attempt + 1, Err: cl.Err}
		c.transition(func(s *Status) {
			s.State = Failed
			s.Reason = cl.Reason
			s.Err = exhausted
			s.Attempt = ac.attempt
			s.NextRetryDelay = 0
			s.NextRetryAt = time.Time{}
		})
		c.log.Warn("fetch retries exhausted", slog.Any("key", ac.key), slog.Int("attempts", exhausted.Attempts), slog.Any("error", cl.Err))
		return nil
	}

	delay := c.backoff.DelayFor(ac.attempt)
	ac.attempt++
	owner, seq := c.id, ac.seq
	cmd := ac.sched.Arm(delay, func(token uint64) tea.Msg {
		return retryMsg{owner: owner, seq: seq, token: token}
	})
	c.transition(func(s *Status) {
		s.State = Retrying
		s.Reason = cl.Reason
		s.Err = cl.Err
		s.Attempt = ac.attempt
		s.NextRetryDelay = delay
		s.NextRetryAt = c.clock.Now().Add(delay)
	})
	c.log.Info("fetch retry scheduled",
		slog.Any("key", ac.key),
		slog.Int("attempt", ac.attempt),
		slog.Duration("delay", delay),
		slog.String("reason", string(cl.Reason)))
	return cmd
}

func (c *Controller[K, R]) handleRetry(msg retryMsg) tea.Cmd {
	ac := c.active
	if c.guard.IsStale(msg.seq) || ac == nil || ac.seq != msg.seq || !ac.sched.Owns(msg.token) {
		c.dropStale("timer")
		return nil
	}
	ac.sched.Cancel()
	return c.issue()
}

func (c *Controller[K, R]) handleConnectivity(ev connectivity.Event) tea.Cmd {
	offline := !ev.Online
	if c.snap.Offline != offline {
		c.transition(func(s *Status) { s.Offline = offline })
	}

	state := c.snap.State
	if offline {
		if state == Loading || state == Retrying {
			c.log.Warn("connection lost during fetch", slog.Any("key", c.snap.Key), slog.String("state", state.String()))
		}
		return nil
	}

	ac := c.active
	if ac == nil || ac.inFlight {
		return nil
	}
	// Failed(offline) means the budget ran out on transport errors; only
	// RetryNow restarts it.
	if state != Retrying || c.snap.Reason != ReasonOffline {
		return nil
	}
	c.log.Info("connection restored, retrying",
		slog.Any("key", ac.key),
		slog.Int("attempt", ac.attempt),
		slog.Bool("skipped_backoff", ac.sched.Pending()))
	ac.sched.Cancel()
	return c.issue()
}

func (c *Controller[K, R]) dropStale(what string) {
	c.log.Debug("dropped stale "+what, slog.Any("key", c.snap.Key))
	if c.onStale != nil {
		c.onStale()
	}
}

func (c *Controller[K, R]) transition(update func(*Status)) {
	prev := c.snap.Status
	update(&c.snap.Status)
	if c.onChange != nil {
		c.onChange(prev, c.snap.Status)
	}
}
