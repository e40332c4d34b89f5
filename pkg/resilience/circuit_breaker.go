package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitOpenError reports which backend is shedding calls and for how long.
type CircuitOpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v: retry in %s", ErrCircuitOpen, e.RetryAfter)
	}
	return fmt.Sprintf("%v for %s: retry in %s", ErrCircuitOpen, e.Name, e.RetryAfter)
}

func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

type CircuitBreakerState string

const (
	CircuitClosed   CircuitBreakerState = "closed"
	CircuitOpen     CircuitBreakerState = "open"
	CircuitHalfOpen CircuitBreakerState = "half_open"
)

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
}

// CircuitBreaker stops calling a remote storage backend after consecutive
// failures. After OpenTimeout one trial call is let through; its outcome
// closes or reopens the circuit.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state     CircuitBreakerState
	failures  int
	openUntil time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}

	return &CircuitBreaker{
		cfg:   cfg,
		now:   time.Now,
		state: CircuitClosed,
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshLocked()
	return cb.state
}

// Execute runs fn unless the circuit is open. Context cancellation is not
// counted as a backend failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.release(err)
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshLocked()
	switch cb.state {
	case CircuitOpen:
		return cb.openErrLocked()
	case CircuitHalfOpen:
		if cb.probing {
			return cb.openErrLocked()
		}
		cb.probing = true
	}
	return nil
}

func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	halfOpen := cb.state == CircuitHalfOpen
	if halfOpen {
		cb.probing = false
	}

	switch {
	case errors.Is(err, context.Canceled):
		return
	case err == nil:
		cb.state = CircuitClosed
		cb.failures = 0
	case halfOpen:
		cb.tripLocked()
	default:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.tripLocked()
		}
	}
}

func (cb *CircuitBreaker) refreshLocked() {
	if cb.state == CircuitOpen && !cb.now().Before(cb.openUntil) {
		cb.state = CircuitHalfOpen
		cb.probing = false
	}
}

func (cb *CircuitBreaker) tripLocked() {
	cb.state = CircuitOpen
	cb.failures = 0
	cb.openUntil = cb.now().Add(cb.cfg.OpenTimeout)
}

func (cb *CircuitBreaker) openErrLocked() error {
	remaining := cb.openUntil.Sub(cb.now())
	if remaining < 0 {
		remaining = 0
	}
	return &CircuitOpenError{Name: cb.cfg.Name, RetryAfter: remaining}
}
