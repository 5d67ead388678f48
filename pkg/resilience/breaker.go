package resilience

import (
	"log/slog"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets calls through and records their outcomes.
	StateClosed State = iota

	// StateOpen rejects calls until the wait duration has elapsed.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Outcome is the result of a call as seen by the breaker.
type Outcome int

const (
	// OutcomeSuccess counts as a healthy call.
	OutcomeSuccess Outcome = iota

	// OutcomeFailure counts towards the failure rate.
	OutcomeFailure

	// OutcomeIgnored is not recorded (e.g. caller cancellation).
	OutcomeIgnored
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "ignored"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// FailureRateThreshold is the failure percentage that opens the circuit.
	FailureRateThreshold float64

	// MinimumCalls is the number of outcomes needed before the rate is
	// evaluated.
	MinimumCalls int

	// WindowSize is the number of most recent outcomes kept. Defaults to
	// MinimumCalls.
	WindowSize int

	// WaitDurationInOpen is how long the circuit stays open.
	WaitDurationInOpen time.Duration

	// HalfOpenMaxCalls is the number of concurrent probes in half-open.
	HalfOpenMaxCalls int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnStateChange observes transitions. It runs outside the breaker lock.
	OnStateChange func(from, to State)

	// Logger receives transition logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Snapshot is a point-in-time view of the breaker.
type Snapshot struct {
	State            State     `json:"-"`
	StateName        string    `json:"state"`
	Calls            int       `json:"calls"`
	Failures         int       `json:"failures"`
	FailureRate      float64   `json:"failure_rate"`
	OpenedAt         time.Time `json:"opened_at,omitzero"`
	HalfOpenInFlight int       `json:"half_open_in_flight"`
}

// Breaker is a count-based circuit breaker.
//
// In closed state it keeps the outcomes of the last WindowSize calls; once at
// least MinimumCalls are recorded and the failure rate reaches the threshold
// the circuit opens. The open to half-open transition is evaluated lazily on
// the next Allow after WaitDurationInOpen. In half-open a success closes the
// circuit with a fresh window and a failure re-opens it.
//
// All state is guarded by one mutex. Outcomes reported for a call admitted
// under an earlier state are dropped.
type Breaker struct {
	cfg    BreakerConfig
	logger *slog.Logger

	mu               sync.Mutex
	state            State
	generation       uint64
	openedAt         time.Time
	window           []bool // true = failure
	next             int
	count            int
	failures         int
	halfOpenInFlight int
}

// NewBreaker creates a closed Breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MinimumCalls < 1 {
		cfg.MinimumCalls = 1
	}
	if cfg.WindowSize < cfg.MinimumCalls {
		cfg.WindowSize = cfg.MinimumCalls
	}
	if cfg.HalfOpenMaxCalls < 1 {
		cfg.HalfOpenMaxCalls = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Breaker{
		cfg:    cfg,
		logger: logger.With("component", "resilience.breaker"),
		window: make([]bool, cfg.WindowSize),
	}
}

type transition struct {
	from, to State
}

// Allow asks permission for one call. On success the returned done func must
// be called exactly once with the call's outcome; further calls are ignored.
// When the circuit rejects the call a *CircuitOpenError is returned.
func (b *Breaker) Allow() (done func(Outcome), err error) {
	b.mu.Lock()
	var changes []transition
	now := b.cfg.Now()
	changes = b.advance(now, changes)

	switch b.state {
	case StateOpen:
		wait := b.cfg.WaitDurationInOpen - now.Sub(b.openedAt)
		b.mu.Unlock()
		b.notify(changes)
		return nil, &CircuitOpenError{State: StateOpen, RetryAfter: wait}
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.cfg.HalfOpenMaxCalls {
			b.mu.Unlock()
			b.notify(changes)
			return nil, &CircuitOpenError{State: StateHalfOpen}
		}
		b.halfOpenInFlight++
	}

	gen := b.generation
	b.mu.Unlock()
	b.notify(changes)

	var once sync.Once
	return func(o Outcome) {
		once.Do(func() { b.record(gen, o) })
	}, nil
}

func (b *Breaker) record(gen uint64, o Outcome) {
	b.mu.Lock()
	if gen != b.generation {
		b.mu.Unlock()
		return
	}

	var changes []transition
	switch b.state {
	case StateClosed:
		if o == OutcomeIgnored {
			break
		}
		b.push(o == OutcomeFailure)
		if b.count >= b.cfg.MinimumCalls && b.failureRate() >= b.cfg.FailureRateThreshold {
			changes = b.transition(StateOpen, b.cfg.Now(), changes)
		}
	case StateHalfOpen:
		b.halfOpenInFlight--
		switch o {
		case OutcomeSuccess:
			changes = b.transition(StateClosed, b.cfg.Now(), changes)
		case OutcomeFailure:
			changes = b.transition(StateOpen, b.cfg.Now(), changes)
		}
	}
	b.mu.Unlock()
	b.notify(changes)
}

// advance applies the lazy open to half-open transition. Caller holds mu.
func (b *Breaker) advance(now time.Time, changes []transition) []transition {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.cfg.WaitDurationInOpen {
		return b.transition(StateHalfOpen, now, changes)
	}
	return changes
}

// transition switches state. Caller holds mu.
func (b *Breaker) transition(to State, now time.Time, changes []transition) []transition {
	from := b.state
	b.state = to
	b.generation++
	b.halfOpenInFlight = 0

	switch to {
	case StateOpen:
		b.openedAt = now
	case StateClosed:
		b.resetWindow()
		b.openedAt = time.Time{}
	}
	return append(changes, transition{from: from, to: to})
}

func (b *Breaker) notify(changes []transition) {
	for _, c := range changes {
		if c.from == c.to {
			continue
		}
		b.logger.Warn("circuit state changed", "from", c.from.String(), "to", c.to.String())
		if b.cfg.OnStateChange != nil {
			b.cfg.OnStateChange(c.from, c.to)
		}
	}
}

func (b *Breaker) push(failure bool) {
	if b.count == len(b.window) {
		if b.window[b.next] {
			b.failures--
		}
	} else {
		b.count++
	}
	b.window[b.next] = failure
	if failure {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.window)
}

func (b *Breaker) resetWindow() {
	for i := range b.window {
		b.window[i] = false
	}
	b.next, b.count, b.failures = 0, 0, 0
}

func (b *Breaker) failureRate() float64 {
	if b.count == 0 {
		return 0
	}
	return float64(b.failures) * 100 / float64(b.count)
}

// State returns the current state, applying a due open to half-open
// transition first.
func (b *Breaker) State() State {
	b.mu.Lock()
	changes := b.advance(b.cfg.Now(), nil)
	s := b.state
	b.mu.Unlock()
	b.notify(changes)
	return s
}

// Snapshot returns the current state and window counts.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	changes := b.advance(b.cfg.Now(), nil)
	s := Snapshot{
		State:            b.state,
		StateName:        b.state.String(),
		Calls:            b.count,
		Failures:         b.failures,
		FailureRate:      b.failureRate(),
		OpenedAt:         b.openedAt,
		HalfOpenInFlight: b.halfOpenInFlight,
	}
	b.mu.Unlock()
	b.notify(changes)
	return s
}

// Reset forces the breaker closed with an empty window. Outcomes of calls
// admitted before the reset are dropped.
func (b *Breaker) Reset() {
	b.mu.Lock()
	changes := b.transition(StateClosed, b.cfg.Now(), nil)
	b.mu.Unlock()
	b.notify(changes)
}
