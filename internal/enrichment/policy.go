package enrichment

import (
	"sync"
	"time"

	"github.com/leynos/wildside-sub003/pkg/platform/circuit"
)

// policyState is the admission state shared by every attempt. All reads and
// writes happen under policy.mu and never around I/O.
type policyState struct {
	closed      bool
	breaker     *circuit.Breaker
	windowStart time.Time
	callsUsed   uint32
	bytesUsed   uint64
	inFlight    int
	lastSeen    time.Time
}

// ticket is an admitted attempt. It must be settled exactly once with
// complete or abandon.
type ticket struct {
	probe       bool
	windowStart time.Time
}

type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota + 1
	outcomeRetryableFailure
	outcomeRejected
)

// admit runs quota checks and then asks the breaker. Quota refusals leave the
// breaker untouched.
func admit(s *policyState, cfg Config, now time.Time) (ticket, circuit.Change, *attemptError) {
	none := circuit.Change{From: s.breaker.State(), To: s.breaker.State()}
	if s.closed {
		return ticket{}, none, stateUnavailable("worker is closed")
	}
	if !s.lastSeen.IsZero() && now.Before(s.lastSeen.Add(-cfg.ClockTolerance)) {
		return ticket{}, none, stateUnavailable("clock moved backwards beyond tolerance")
	}
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	rollWindow(s, cfg, now)

	switch {
	case s.inFlight >= cfg.MaxConcurrentCalls:
		return ticket{}, none, quotaDenied(InFlightCeiling)
	case s.callsUsed >= cfg.CallBudget:
		return ticket{}, none, quotaDenied(CallBudgetExhausted)
	case s.bytesUsed >= cfg.TransferBudget:
		return ticket{}, none, quotaDenied(TransferBudgetExhausted)
	}

	ok, probe, change := s.breaker.Admit(now)
	if !ok {
		return ticket{}, change, circuitOpen()
	}

	s.inFlight++
	s.callsUsed++
	return ticket{probe: probe, windowStart: s.windowStart}, change, nil
}

// complete settles a ticket whose fetch ran to an answer.
func complete(s *policyState, cfg Config, t ticket, now time.Time, outcome attemptOutcome, transferBytes uint64) circuit.Change {
	release(s)
	switch outcome {
	case outcomeSuccess:
		rollWindow(s, cfg, now)
		s.bytesUsed += transferBytes
		return s.breaker.RecordSuccess(now, t.probe)
	case outcomeRetryableFailure:
		return s.breaker.RecordFailure(now, t.probe)
	default:
		s.breaker.ReleaseProbe(t.probe)
		state := s.breaker.State()
		return circuit.Change{From: state, To: state}
	}
}

// abandon settles a ticket whose caller gave up. The call is refunded and the
// breaker learns nothing.
func abandon(s *policyState, t ticket) {
	release(s)
	if s.windowStart.Equal(t.windowStart) && s.callsUsed > 0 {
		s.callsUsed--
	}
	s.breaker.ReleaseProbe(t.probe)
}

func release(s *policyState) {
	if s.inFlight > 0 {
		s.inFlight--
	}
}

func rollWindow(s *policyState, cfg Config, now time.Time) {
	window := now.Truncate(cfg.QuotaWindow)
	if window.After(s.windowStart) {
		s.windowStart = window
		s.callsUsed = 0
		s.bytesUsed = 0
	}
}

// policy serialises access to policyState.
type policy struct {
	mu    sync.Mutex
	cfg   Config
	state policyState
}

func newPolicy(cfg Config) *policy {
	return &policy{
		cfg: cfg,
		state: policyState{
			breaker: circuit.New("overpass",
				circuit.WithFailureThreshold(cfg.FailureThreshold),
				circuit.WithFailureWindow(cfg.FailureWindow),
				circuit.WithCooldown(cfg.OpenCooldown),
				circuit.WithMaxCooldown(cfg.MaxOpenCooldown),
			),
		},
	}
}

func (p *policy) admit(now time.Time) (ticket, circuit.Change, *attemptError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return admit(&p.state, p.cfg, now)
}

func (p *policy) complete(t ticket, now time.Time, outcome attemptOutcome, transferBytes uint64) circuit.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return complete(&p.state, p.cfg, t, now, outcome, transferBytes)
}

func (p *policy) abandon(t ticket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	abandon(&p.state, t)
}

func (p *policy) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.closed = true
}

// snapshot is a copy of the counters for logs and tests.
type snapshot struct {
	State     circuit.State
	InFlight  int
	CallsUsed uint32
	BytesUsed uint64
}

func (p *policy) snapshot() snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot{
		State:     p.state.breaker.State(),
		InFlight:  p.state.inFlight,
		CallsUsed: p.state.callsUsed,
		BytesUsed: p.state.bytesUsed,
	}
}
