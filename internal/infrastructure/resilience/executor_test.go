package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          false,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}
}

func retryAll(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	executor := NewExecutor(testConfig())

	attempts := 0
	err := executor.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	executor := NewExecutor(testConfig())

	attempts := 0
	err := executor.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return errors.New("permanent")
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	executor := NewExecutor(testConfig())

	attempts := 0
	wantErr := errors.New("still failing")
	err := executor.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return wantErr
	}, retryAll)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected final attempt error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoReturnsOnCancelledContext(t *testing.T) {
	executor := NewExecutor(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := executor.Do(ctx, "op", func(context.Context) error {
		attempts++
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("callback must not run after cancellation, ran %d times", attempts)
	}
}

func TestDoRejectsNilCallback(t *testing.T) {
	executor := NewExecutor(testConfig())
	if err := executor.Do(context.Background(), "op", nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerEnabled = true
	cfg.RetryMaxAttempts = 1
	executor := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	classify := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		if err := executor.Do(context.Background(), "op", fail, classify); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := executor.Do(context.Background(), "op", fail, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakerIgnoresUnrecordedFailures(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerEnabled = true
	cfg.RetryMaxAttempts = 1
	executor := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("client side") }
	classify := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}

	for i := 0; i < 10; i++ {
		if err := executor.Do(context.Background(), "op", fail, classify); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := executor.Do(context.Background(), "op", fail, classify)
	if IsCircuitOpen(err) {
		t.Fatal("unrecorded failures must not trip the breaker")
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerEnabled = true
	cfg.RetryMaxAttempts = 1
	executor := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	classify := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 3; i++ {
		_ = executor.Do(context.Background(), "broken", fail, classify)
	}
	if err := executor.Do(context.Background(), "broken", fail, classify); !IsCircuitOpen(err) {
		t.Fatal("expected the broken operation's circuit to open")
	}

	if err := executor.Do(context.Background(), "healthy", func(context.Context) error {
		return nil
	}, classify); err != nil {
		t.Fatalf("other operations must not be affected: %v", err)
	}
}
