package enrichment

import (
	"fmt"
	"time"
)

// Config bounds how hard the worker leans on the Overpass source.
type Config struct {
	MaxConcurrentCalls int           `koanf:"max_concurrent_calls" validate:"min=1"`
	CallBudget         uint32        `koanf:"call_budget" validate:"min=1"`
	TransferBudget     uint64        `koanf:"transfer_budget_bytes" validate:"min=1"`
	QuotaWindow        time.Duration `koanf:"quota_window" validate:"min=1s"`

	MaxAttempts       int           `koanf:"max_attempts" validate:"min=1"`
	InitialBackoff    time.Duration `koanf:"initial_backoff" validate:"min=1ms"`
	MaxBackoff        time.Duration `koanf:"max_backoff" validate:"min=1ms"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier" validate:"gte=1"`
	BackoffJitter     float64       `koanf:"backoff_jitter" validate:"gte=0,lte=1"`

	FailureThreshold int           `koanf:"failure_threshold" validate:"min=1"`
	FailureWindow    time.Duration `koanf:"failure_window" validate:"min=1ms"`
	OpenCooldown     time.Duration `koanf:"open_cooldown" validate:"min=1ms"`
	MaxOpenCooldown  time.Duration `koanf:"max_open_cooldown" validate:"min=1ms"`

	// ClockTolerance is how far the clock may step backwards before the
	// worker stops trusting its quota window and refuses work.
	ClockTolerance time.Duration `koanf:"clock_tolerance" validate:"min=0"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentCalls: 2,
		CallBudget:         10_000,
		TransferBudget:     1 << 30,
		QuotaWindow:        24 * time.Hour,
		MaxAttempts:        3,
		InitialBackoff:     200 * time.Millisecond,
		MaxBackoff:         5 * time.Second,
		BackoffMultiplier:  2,
		BackoffJitter:      0.2,
		FailureThreshold:   3,
		FailureWindow:      time.Minute,
		OpenCooldown:       30 * time.Second,
		MaxOpenCooldown:    5 * time.Minute,
		ClockTolerance:     5 * time.Second,
	}
}

// Check rejects configurations the worker cannot run with. It repeats the
// struct-tag rules so a Config built in code is held to the same bounds.
func (c Config) Check() error {
	switch {
	case c.MaxConcurrentCalls < 1:
		return fmt.Errorf("max concurrent calls must be at least 1, got %d", c.MaxConcurrentCalls)
	case c.CallBudget == 0:
		return fmt.Errorf("call budget must be positive")
	case c.TransferBudget == 0:
		return fmt.Errorf("transfer budget must be positive")
	case c.QuotaWindow < time.Second:
		return fmt.Errorf("quota window must be at least 1s, got %s", c.QuotaWindow)
	case c.MaxAttempts < 1:
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	case c.InitialBackoff <= 0 || c.MaxBackoff < c.InitialBackoff:
		return fmt.Errorf("backoff must satisfy 0 < initial (%s) <= max (%s)", c.InitialBackoff, c.MaxBackoff)
	case c.BackoffMultiplier < 1:
		return fmt.Errorf("backoff multiplier must be at least 1, got %v", c.BackoffMultiplier)
	case c.BackoffJitter < 0 || c.BackoffJitter > 1:
		return fmt.Errorf("backoff jitter must be within [0, 1], got %v", c.BackoffJitter)
	case c.FailureThreshold < 1:
		return fmt.Errorf("failure threshold must be at least 1, got %d", c.FailureThreshold)
	case c.FailureWindow <= 0:
		return fmt.Errorf("failure window must be positive")
	case c.OpenCooldown <= 0 || c.MaxOpenCooldown < c.OpenCooldown:
		return fmt.Errorf("cooldown must satisfy 0 < open (%s) <= max (%s)", c.OpenCooldown, c.MaxOpenCooldown)
	case c.ClockTolerance < 0:
		return fmt.Errorf("clock tolerance must not be negative")
	}
	return nil
}
