package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// NormalizeCircuitBreakerConfig fills unset fields with conservative
// defaults so a zero config still yields a working breaker.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 15 * time.Second
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = 2
	}
	return cfg
}

// CircuitBreaker trips after a run of consecutive failures and stops
// traffic to the upstream until a cool-off passes; it then lets a
// bounded number of probes through before fully closing again.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold   int
	coolOff     time.Duration
	probeBudget int

	state     CircuitState
	failures  int
	trippedAt time.Time
	probes    int
	probeWins int

	now func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	})

	return &CircuitBreaker{
		threshold:   cfg.FailureThreshold,
		coolOff:     cfg.OpenTimeout,
		probeBudget: cfg.HalfOpenMaxReq,
		state:       CircuitStateClosed,
		now:         time.Now,
	}
}

// Allow reports whether a request may proceed right now. An open
// breaker whose cool-off has elapsed moves to half-open and admits
// probes up to the budget.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.trippedAt) < b.coolOff {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.probes = 0
		b.probeWins = 0
	}

	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.probeBudget {
			return ErrCircuitOpen
		}
		b.probes++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		if b.probes > 0 {
			b.probes--
		}
		b.probeWins++
		if b.probeWins >= b.probeBudget && b.probes == 0 {
			b.state = CircuitStateClosed
			b.failures = 0
			b.trippedAt = time.Time{}
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.trip()
		}
	case CircuitStateHalfOpen:
		// One failed probe re-opens immediately.
		b.trip()
	case CircuitStateOpen:
		b.trippedAt = b.now()
	}
}

// State reports the effective state, surfacing half-open once an open
// breaker's cool-off has elapsed even before the next Allow call.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.trippedAt) >= b.coolOff {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.trippedAt = b.now()
	b.probes = 0
	b.probeWins = 0
}
