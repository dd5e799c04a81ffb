// Package resilience bounds how hard a harvest run leans on a failing source:
// transient page-load failures are retried with backoff, and a source that
// keeps failing is tripped open and skipped for a while.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/model"
)

// State is a breaker state.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the reset timeout passes.
	Open
	// HalfOpen lets probe calls through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned for calls rejected by an open breaker.
var ErrCircuitOpen = eris.New("resilience: source circuit is open")

// BreakerConfig controls one source's breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive tripping failures that opens the breaker.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before probing.
	ResetTimeout time.Duration
	// HalfOpenProbes is the number of successful probes needed to close again.
	HalfOpenProbes int
	// ShouldTrip overrides Trips.
	ShouldTrip func(err error) bool
	// OnStateChange observes transitions. It runs with the breaker locked.
	OnStateChange func(from, to State)
}

// DefaultBreakerConfig opens after five straight failures for a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     time.Minute,
		HalfOpenProbes:   1,
	}
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	cfg BreakerConfig

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	successes int

	now func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	d := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = d.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = d.ResetTimeout
	}
	if cfg.HalfOpenProbes <= 0 {
		cfg.HalfOpenProbes = d.HalfOpenProbes
	}
	if cfg.ShouldTrip == nil {
		cfg.ShouldTrip = Trips
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// ExecuteVal is Execute for functions that return a value.
func ExecuteVal[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(err)
	return val, err
}

// State returns the current state, reporting HalfOpen once an open breaker
// is due for a probe.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		return HalfOpen
	}
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return nil
	}
	if b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		b.transition(HalfOpen)
		return nil
	}
	return ErrCircuitOpen
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !b.cfg.ShouldTrip(err) {
		switch b.state {
		case HalfOpen:
			b.successes++
			if b.successes >= b.cfg.HalfOpenProbes {
				b.failures, b.successes = 0, 0
				b.transition(Closed)
			}
		case Closed:
			b.failures = 0
		}
		return
	}

	b.failures++
	switch b.state {
	case Closed:
		if b.failures >= b.cfg.FailureThreshold {
			b.openedAt = b.now()
			b.transition(Open)
		}
	case HalfOpen:
		b.successes = 0
		b.openedAt = b.now()
		b.transition(Open)
	}
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if b.cfg.OnStateChange != nil && from != to {
		b.cfg.OnStateChange(from, to)
	}
}

// SourceBreakers holds one breaker per source, created on first use.
type SourceBreakers struct {
	cfg BreakerConfig

	mu       sync.Mutex
	breakers map[model.SourceID]*Breaker
}

// NewSourceBreakers creates an empty set.
func NewSourceBreakers(cfg BreakerConfig) *SourceBreakers {
	return &SourceBreakers{cfg: cfg, breakers: make(map[model.SourceID]*Breaker)}
}

// Get returns the breaker for source.
func (sb *SourceBreakers) Get(source model.SourceID) *Breaker {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if b, ok := sb.breakers[source]; ok {
		return b
	}
	cfg := sb.cfg
	user := cfg.OnStateChange
	cfg.OnStateChange = func(from, to State) {
		zap.L().Warn("resilience: source circuit changed",
			zap.String("source", string(source)),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		if user != nil {
			user(from, to)
		}
	}
	b := NewBreaker(cfg)
	sb.breakers[source] = b
	return b
}

// States snapshots every breaker created so far.
func (sb *SourceBreakers) States() map[model.SourceID]State {
	sb.mu.Lock()
	breakers := make(map[model.SourceID]*Breaker, len(sb.breakers))
	for id, b := range sb.breakers {
		breakers[id] = b
	}
	sb.mu.Unlock()

	out := make(map[model.SourceID]State, len(breakers))
	for id, b := range breakers {
		out[id] = b.State()
	}
	return out
}
