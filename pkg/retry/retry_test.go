package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeTimeout, "request timed out")
		}
		return nil
	}, testConfig(5))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	transient := errs.New(errs.ErrorTypeServerError, "boom")
	calls := 0
	err := Do(func() error {
		calls++
		return transient
	}, testConfig(3))

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	// The last transient error must remain reachable
	if !errors.Is(err, transient) {
		t.Errorf("exhaustion error should wrap the last attempt error, got %v", err)
	}
}

func TestDoStopsOnFatalError(t *testing.T) {
	fatal := errs.New(errs.ErrorTypeNotFound, "no such card")
	calls := 0
	err := Do(func() error {
		calls++
		return fatal
	}, testConfig(5))

	if !errors.Is(err, fatal) {
		t.Fatalf("expected the fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fatal error should not be retried, got %d calls", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig(0) // unlimited attempts
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: 50 * time.Millisecond}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := Do(func() error {
		return errs.New(errs.ErrorTypeNetwork, "connection reset")
	}, cfg)

	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeTimeout, "slow")
		}
		return "payload", nil
	}, testConfig(3))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "payload" {
		t.Errorf("expected %q, got %q", "payload", result)
	}
}

func TestOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := testConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = Do(func() error {
		return errs.New(errs.ErrorTypeServerError, "boom")
	}, cfg)

	if len(attempts) != 3 {
		t.Errorf("expected 3 OnRetry calls, got %d", len(attempts))
	}
}

func TestDefaultRetryIf(t *testing.T) {
	if DefaultRetryIf(nil) {
		t.Error("nil error should not be retried")
	}
	if DefaultRetryIf(context.Canceled) {
		t.Error("context.Canceled should not be retried")
	}
	if !DefaultRetryIf(errs.New(errs.ErrorTypeNetwork, "reset")) {
		t.Error("network errors should be retried")
	}
	if DefaultRetryIf(errs.New(errs.ErrorTypeParsing, "bad html")) {
		t.Error("parsing errors should not be retried")
	}
	if !DefaultRetryIf(errors.New("unclassified")) {
		t.Error("unclassified errors default to retryable")
	}
}

func TestExponentialBackoffGrowth(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	if d := eb.NextDelay(0); d != 0 {
		t.Errorf("attempt 0 should have no delay, got %v", d)
	}
	if d := eb.NextDelay(1); d != 100*time.Millisecond {
		t.Errorf("attempt 1 delay = %v, want 100ms", d)
	}
	if d := eb.NextDelay(2); d != 200*time.Millisecond {
		t.Errorf("attempt 2 delay = %v, want 200ms", d)
	}
	if d := eb.NextDelay(10); d != time.Second {
		t.Errorf("delay should cap at MaxDelay, got %v", d)
	}
}

func TestWaitCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Second); err == nil {
		t.Error("Wait should fail on cancelled context")
	}
	if err := Wait(ctx, 0); err != nil {
		t.Error("zero delay should not consult the context")
	}
}
