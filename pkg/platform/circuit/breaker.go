// Package circuit implements a clock-driven three-state circuit breaker.
//
// Breaker does no locking of its own. Callers that pair it with other
// admission state (quotas, in-flight counters) hold one lock around both so a
// decision and its bookkeeping commit together. Every method takes the current
// time explicitly, which keeps transitions deterministic under test.
package circuit

import "time"

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

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

const (
	defaultFailureThreshold = 3
	defaultFailureWindow    = time.Minute
	defaultCooldown         = 30 * time.Second
	defaultMaxCooldown      = 5 * time.Minute
)

// Change describes a transition caused by a call. From == To means no transition.
type Change struct {
	From State
	To   State
}

// Changed reports whether the call moved the breaker.
func (c Change) Changed() bool { return c.From != c.To }

// Opened reports whether the call tripped the breaker.
func (c Change) Opened() bool { return c.Changed() && c.To == StateOpen }

// Closed reports whether the call closed the breaker.
func (c Change) Closed() bool { return c.Changed() && c.To == StateClosed }

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many failures inside the window trip the breaker.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithFailureWindow sets the trailing window failures are counted in.
func WithFailureWindow(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.window = d
		}
	}
}

// WithCooldown sets how long the breaker stays open after first tripping.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithMaxCooldown caps the doubled cooldown applied after failed probes.
func WithMaxCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.maxCooldown = d
		}
	}
}

// Breaker guards a dependency. The zero value is not usable; call New.
type Breaker struct {
	name        string
	threshold   int
	window      time.Duration
	cooldown    time.Duration
	maxCooldown time.Duration

	state         State
	failures      []time.Time
	openedAt      time.Time
	openFor       time.Duration
	reopens       int
	probeInFlight bool
}

// New builds a closed breaker.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:        name,
		threshold:   defaultFailureThreshold,
		window:      defaultFailureWindow,
		cooldown:    defaultCooldown,
		maxCooldown: defaultMaxCooldown,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.maxCooldown < b.cooldown {
		b.maxCooldown = b.cooldown
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State { return b.state }

// IsOpen reports whether calls are currently being refused outright.
func (b *Breaker) IsOpen() bool { return b.state == StateOpen }

// Failures returns the number of failures counted in the window as of now.
func (b *Breaker) Failures(now time.Time) int {
	b.prune(now)
	return len(b.failures)
}

// OpenUntil returns when an open breaker will admit a probe. It is the zero
// time unless the breaker is open.
func (b *Breaker) OpenUntil() time.Time {
	if b.state != StateOpen {
		return time.Time{}
	}
	return b.openedAt.Add(b.openFor)
}

// Admit decides whether a call may proceed. probe is true when the call is the
// single half-open trial; its outcome must be reported with probe set.
func (b *Breaker) Admit(now time.Time) (ok, probe bool, change Change) {
	change = Change{From: b.state, To: b.state}
	switch b.state {
	case StateClosed:
		return true, false, change
	case StateOpen:
		if now.Before(b.openedAt.Add(b.openFor)) {
			return false, false, change
		}
		b.state = StateHalfOpen
		change.To = StateHalfOpen
	}
	if b.probeInFlight {
		return false, false, change
	}
	b.probeInFlight = true
	return true, true, change
}

// RecordSuccess reports a successful call.
func (b *Breaker) RecordSuccess(now time.Time, probe bool) Change {
	change := Change{From: b.state, To: b.state}
	switch b.state {
	case StateClosed:
		b.failures = b.failures[:0]
	case StateHalfOpen:
		if !probe {
			return change
		}
		b.reset()
		change.To = StateClosed
	}
	return change
}

// RecordFailure reports a failure that reflects the dependency's health.
func (b *Breaker) RecordFailure(now time.Time, probe bool) Change {
	change := Change{From: b.state, To: b.state}
	switch b.state {
	case StateClosed:
		b.failures = append(b.failures, now)
		b.prune(now)
		if len(b.failures) >= b.threshold {
			b.trip(now, b.cooldown)
			change.To = StateOpen
		}
	case StateHalfOpen:
		if !probe {
			return change
		}
		b.reopens++
		b.trip(now, b.backoff())
		change.To = StateOpen
	}
	return change
}

// ReleaseProbe frees the half-open slot without judging the dependency, for
// calls that ended in a way that says nothing about its health.
func (b *Breaker) ReleaseProbe(probe bool) {
	if probe && b.state == StateHalfOpen {
		b.probeInFlight = false
	}
}

// Reset closes the breaker and forgets all history.
func (b *Breaker) Reset() {
	b.reset()
}

func (b *Breaker) reset() {
	b.state = StateClosed
	b.failures = b.failures[:0]
	b.openedAt = time.Time{}
	b.openFor = 0
	b.reopens = 0
	b.probeInFlight = false
}

func (b *Breaker) trip(now time.Time, openFor time.Duration) {
	b.state = StateOpen
	b.failures = b.failures[:0]
	b.openedAt = now
	b.openFor = openFor
	b.probeInFlight = false
}

// backoff doubles the cooldown per failed probe, capped at maxCooldown.
func (b *Breaker) backoff() time.Duration {
	d := b.cooldown
	for i := 0; i < b.reopens && d < b.maxCooldown; i++ {
		d *= 2
	}
	return min(d, b.maxCooldown)
}

func (b *Breaker) prune(now time.Time) {
	cutoff := now.Add(-b.window)
	keep := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	b.failures = keep
}
