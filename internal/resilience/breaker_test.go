package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fail(_ context.Context) (int, error) { return 0, errors.New("fail") }

func ok(_ context.Context) (int, error) { return 1, nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, _ = Execute(context.Background(), cb, fail)
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	_, err := Execute(context.Background(), cb, func(_ context.Context) (int, error) {
		t.Error("should not be called while open")
		return 0, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	_, _ = Execute(context.Background(), cb, fail)
	_, _ = Execute(context.Background(), cb, fail)
	if cb.Failures() != 2 {
		t.Errorf("expected 2 failures, got %d", cb.Failures())
	}
	_, _ = Execute(context.Background(), cb, ok)
	if cb.Failures() != 0 || cb.State() != CircuitClosed {
		t.Errorf("expected reset closed breaker, got %d failures, %s", cb.Failures(), cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 2, ResetTimeout: 100 * time.Millisecond})
	cb.now = func() time.Time { return now }

	_, _ = Execute(context.Background(), cb, fail)
	_, _ = Execute(context.Background(), cb, fail)
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	cb.now = func() time.Time { return now.Add(200 * time.Millisecond) }
	if cb.State() != CircuitHalfOpen {
		t.Errorf("expected half-open, got %s", cb.State())
	}

	if _, err := Execute(context.Background(), cb, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	var transitions []string
	cb := NewCircuitBreaker(BreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     100 * time.Millisecond,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return now }

	_, _ = Execute(context.Background(), cb, fail)
	_, _ = Execute(context.Background(), cb, fail)

	now = now.Add(200 * time.Millisecond)
	_, _ = Execute(context.Background(), cb, fail)

	if cb.State() != CircuitOpen {
		t.Errorf("expected open after failed probe, got %s", cb.State())
	}
	want := []string{"closed->open", "open->half-open", "half-open->open"}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: want %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestCircuitBreaker_ShouldTrip(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{
		FailureThreshold: 2,
		ShouldTrip:       func(err error) bool { return err.Error() == "unauthorized" },
	})

	for i := 0; i < 5; i++ {
		_, _ = Execute(context.Background(), cb, fail)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("non-tripping errors opened the breaker")
	}

	for i := 0; i < 2; i++ {
		_, _ = Execute(context.Background(), cb, func(_ context.Context) (int, error) {
			return 0, errors.New("unauthorized")
		})
	}
	if cb.State() != CircuitOpen {
		t.Errorf("expected open, got %s", cb.State())
	}
}

func TestCircuitState_String(t *testing.T) {
	if CircuitState(99).String() != "unknown" {
		t.Error("expected unknown")
	}
}
