package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), DefaultRetryConfig(), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastRetry(3), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("temporary"), 503)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastRetry(3), func(_ context.Context) error {
		calls++
		return NewTransientError(errors.New("always fails"), 500)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NonTransientError_NoRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastRetry(3), func(_ context.Context) error {
		calls++
		return errors.New("bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := Do(ctx, fastRetry(5), func(_ context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("temporary"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_ReturnsValueOnSuccess(t *testing.T) {
	val, err := DoVal(context.Background(), fastRetry(2), func(_ context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "ok" {
		t.Errorf("expected ok, got %q", val)
	}
}

func TestDoVal_CustomShouldRetry(t *testing.T) {
	cfg := fastRetry(3)
	cfg.ShouldRetry = func(error) bool { return true }
	var retried []int
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 0, errors.New("plain")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("unexpected retry callbacks: %v", retried)
	}
}

func TestWithRetries(t *testing.T) {
	if got := DefaultRetryConfig().WithRetries(2).MaxAttempts; got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if got := DefaultRetryConfig().WithRetries(-1).MaxAttempts; got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestComputeBackoff_CapsAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		Multiplier:     10,
	})
	if d := computeBackoff(5, cfg); d != 2*time.Second {
		t.Errorf("expected 2s cap, got %s", d)
	}
}

func TestSleep_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
