package driver

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollUntilImmediateSuccess(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), 0, time.Second, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("PollUntil returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("condition called %d times, want 1", calls)
	}
}

func TestPollUntilEventualSuccess(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("PollUntil returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("condition called %d times, want 3", calls)
	}
}

func TestPollUntilTimesOut(t *testing.T) {
	err := PollUntil(context.Background(), time.Millisecond, 10*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrPollTimeout) {
		t.Errorf("expected ErrPollTimeout, got %v", err)
	}
}

func TestPollUntilPropagatesConditionError(t *testing.T) {
	boom := errors.New("boom")
	err := PollUntil(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected condition error, got %v", err)
	}
}

func TestPollUntilHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PollUntil(ctx, time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
