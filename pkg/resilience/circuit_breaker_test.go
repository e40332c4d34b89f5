package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func newTestBreaker(threshold int, timeout time.Duration) (*CircuitBreaker, *fakeTime) {
	clock := &fakeTime{t: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "s3:uploads",
		FailureThreshold: threshold,
		OpenTimeout:      timeout,
	})
	cb.now = clock.now
	return cb, clock
}

var (
	fail    = func(context.Context) error { return errors.New("boom") }
	succeed = func(context.Context) error { return nil }
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Second)

	if err := cb.Execute(context.Background(), fail); err == nil {
		t.Fatalf("expected first failure")
	}
	if cb.State() != CircuitClosed {
		t.Fatalf("expected circuit closed after one failure, got %s", cb.State())
	}
	if err := cb.Execute(context.Background(), fail); err == nil {
		t.Fatalf("expected second failure")
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("expected circuit open, got %s", cb.State())
	}

	called := false
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open error, got %v", err)
	}
	if called {
		t.Fatalf("fn must not run while open")
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Second)

	_ = cb.Execute(context.Background(), fail)
	_ = cb.Execute(context.Background(), succeed)
	_ = cb.Execute(context.Background(), fail)

	if cb.State() != CircuitClosed {
		t.Fatalf("expected circuit closed, got %s", cb.State())
	}
}

func TestCircuitBreakerHalfOpenClosesOnSuccess(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)

	_ = cb.Execute(context.Background(), fail)
	clock.t = clock.t.Add(time.Second)

	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half open, got %s", cb.State())
	}
	if err := cb.Execute(context.Background(), succeed); err != nil {
		t.Fatalf("expected success in half-open, got %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Fatalf("expected circuit closed, got %s", cb.State())
	}
}

func TestCircuitBreakerHalfOpenReopensOnFailure(t *testing.T) {
	cb, clock := newTestBreaker(3, time.Second)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	clock.t = clock.t.Add(2 * time.Second)

	_ = cb.Execute(context.Background(), fail)
	if cb.State() != CircuitOpen {
		t.Fatalf("expected circuit reopened, got %s", cb.State())
	}
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Second)

	err := cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Fatalf("cancellation must not trip the circuit, got %s", cb.State())
	}
}

func TestCircuitBreakerOpenErrorCarriesRetryAfter(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)

	_ = cb.Execute(context.Background(), fail)
	clock.t = clock.t.Add(4 * time.Second)

	err := cb.Execute(context.Background(), succeed)
	var openErr *CircuitOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected CircuitOpenError, got %T", err)
	}
	if openErr.RetryAfter != 6*time.Second {
		t.Fatalf("expected retry_after 6s, got %s", openErr.RetryAfter)
	}
	if openErr.Name != "s3:uploads" {
		t.Fatalf("expected name s3:uploads, got %s", openErr.Name)
	}
}
