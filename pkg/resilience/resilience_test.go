package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
)

var fastRetry = RetryConfig{
	MaxAttempts:  4,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "flaky", fastRetry, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Retry(context.Background(), "broken", fastRetry, func(ctx context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
	if calls != fastRetry.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, fastRetry.MaxAttempts)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	denied := errors.New("denied")
	calls := 0
	err := Retry(context.Background(), "auth", fastRetry, func(ctx context.Context) error {
		calls++
		return Permanent(denied)
	})
	if err != denied {
		t.Errorf("error = %v, want the unwrapped permanent error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "cancelled", fastRetry, func(ctx context.Context) error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("error = %v, want DeadlineExceeded and ErrTimeout", err)
	}

	err = WithTimeout(context.Background(), time.Second, "fast", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("fast call failed: %v", err)
	}
}
