package pacing

import (
	"context"
	"testing"
	"time"

	"autoapply/internal/config"
	"autoapply/internal/logging"
)

func pacerConfig() *config.Config {
	return &config.Config{}
}

// recordedPacer swaps the real sleep for a recorder so cooldown math is
// testable without waiting
func recordedPacer(cfg *config.Config, keepAlive KeepAliveFunc) (*JitterPacer, *[]time.Duration) {
	p := NewJitterPacer(cfg, keepAlive, logging.NewMultiLogger())
	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestWaitEnforcesMinimumSpacing(t *testing.T) {
	cfg := pacerConfig()
	cfg.Pacing.MinDelay = 5 * time.Millisecond
	cfg.Pacing.MaxDelay = 5 * time.Millisecond

	p := NewJitterPacer(cfg, nil, logging.NewMultiLogger())
	ctx := context.Background()

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
		stamps = append(stamps, time.Now())
	}

	// Allow a little scheduler slack under the floor
	slack := time.Millisecond
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < cfg.Pacing.MinDelay-slack {
			t.Errorf("gap %d = %v, want >= %v", i, gap, cfg.Pacing.MinDelay)
		}
	}
}

func TestWaitJitterStaysInRange(t *testing.T) {
	cfg := pacerConfig()
	cfg.Pacing.MaxDelay = 100 * time.Millisecond

	p, slept := recordedPacer(cfg, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}

	for _, d := range *slept {
		if d < 0 || d >= cfg.Pacing.MaxDelay {
			t.Errorf("jitter %v outside [0, %v)", d, cfg.Pacing.MaxDelay)
		}
	}
}

func TestActionCooldownFiresOnSchedule(t *testing.T) {
	cfg := pacerConfig()
	cfg.Pacing.ActionCooldownEvery = 3
	cfg.Pacing.ActionCooldownMin = time.Minute
	cfg.Pacing.ActionCooldownMax = time.Minute

	p, slept := recordedPacer(cfg, nil)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}

	// Actions 3 and 6 trigger the cooldown
	if len(*slept) != 2 {
		t.Fatalf("cooldowns = %d, want 2 (slept %v)", len(*slept), *slept)
	}
	for _, d := range *slept {
		if d != time.Minute {
			t.Errorf("cooldown = %v, want 1m", d)
		}
	}
}

func TestPageCooldownSlicesWithKeepAlive(t *testing.T) {
	cfg := pacerConfig()
	cfg.Pacing.PageCooldownEvery = 1
	cfg.Pacing.PageCooldownMin = 3 * time.Second
	cfg.Pacing.PageCooldownMax = 3 * time.Second
	cfg.Pacing.KeepAliveInterval = time.Second

	keepAlives := 0
	p, slept := recordedPacer(cfg, func(context.Context) { keepAlives++ })

	if err := p.PageDone(context.Background()); err != nil {
		t.Fatalf("PageDone returned error: %v", err)
	}

	var total time.Duration
	for _, d := range *slept {
		if d > cfg.Pacing.KeepAliveInterval {
			t.Errorf("slice %v exceeds keep-alive interval", d)
		}
		total += d
	}
	if total != 3*time.Second {
		t.Errorf("total cooldown = %v, want 3s", total)
	}
	// A nudge between every pair of slices
	if keepAlives != len(*slept)-1 {
		t.Errorf("keep-alives = %d, want %d", keepAlives, len(*slept)-1)
	}
}

func TestPageDoneBelowThresholdIsFree(t *testing.T) {
	cfg := pacerConfig()
	cfg.Pacing.PageCooldownEvery = 5
	cfg.Pacing.PageCooldownMin = time.Hour
	cfg.Pacing.PageCooldownMax = time.Hour

	p, slept := recordedPacer(cfg, nil)

	for i := 0; i < 4; i++ {
		if err := p.PageDone(context.Background()); err != nil {
			t.Fatalf("PageDone returned error: %v", err)
		}
	}
	if len(*slept) != 0 {
		t.Errorf("no cooldown expected before the fifth page, got %v", *slept)
	}
}

func TestWaitHonoursCancellation(t *testing.T) {
	cfg := pacerConfig()
	cfg.Pacing.MinDelay = time.Hour
	cfg.Pacing.MaxDelay = time.Hour

	p := NewJitterPacer(cfg, nil, logging.NewMultiLogger())

	ctx, cancel := context.WithCancel(context.Background())
	// Burn the limiter's burst token, then cancel the second wait
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait returned error: %v", err)
	}
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("expected cancellation error")
	}
}
