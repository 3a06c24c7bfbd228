package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"autoapply/internal/config"
	"autoapply/internal/logging"
)

// Pacer spaces out driver actions so the traffic pattern reads as human.
// Wait guards every state-changing driver action; PageDone is called once per
// completed results page.
type Pacer interface {
	Wait(ctx context.Context) error
	PageDone(ctx context.Context) error
}

// KeepAliveFunc is a cheap no-op interaction issued during long cooldowns so
// the session does not idle out.
type KeepAliveFunc func(ctx context.Context)

// JitterPacer issues a randomized delay per action, a long cooldown every N
// pages and a much longer one every M actions. A rate.Limiter enforces the
// hard floor: consecutive actions can never be closer than MinDelay.
type JitterPacer struct {
	cfg       *config.Config
	floor     *rate.Limiter
	keepAlive KeepAliveFunc
	logger    logging.Logger

	// sleep is replaceable in tests
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	rng     *rand.Rand
	actions int
	pages   int
}

// NewJitterPacer creates a pacer from the pacing configuration
func NewJitterPacer(cfg *config.Config, keepAlive KeepAliveFunc, logger logging.Logger) *JitterPacer {
	var floor *rate.Limiter
	if cfg.Pacing.MinDelay > 0 {
		floor = rate.NewLimiter(rate.Every(cfg.Pacing.MinDelay), 1)
	}

	return &JitterPacer{
		cfg:       cfg,
		floor:     floor,
		keepAlive: keepAlive,
		logger:    logger,
		sleep:     sleepCtx,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks for the jittered per-action delay. Every ActionCooldownEvery
// actions it additionally blocks for the long action cooldown.
func (p *JitterPacer) Wait(ctx context.Context) error {
	if p.floor != nil {
		if err := p.floor.Wait(ctx); err != nil {
			return err
		}
	}

	// The floor already spaced us MinDelay apart; add only the random excess
	if extra := p.jitter(0, p.cfg.Pacing.MaxDelay-p.cfg.Pacing.MinDelay); extra > 0 {
		if err := p.sleep(ctx, extra); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.actions++
	actions := p.actions
	p.mu.Unlock()

	every := p.cfg.Pacing.ActionCooldownEvery
	if every > 0 && actions%every == 0 {
		d := p.jitter(p.cfg.Pacing.ActionCooldownMin, p.cfg.Pacing.ActionCooldownMax)
		p.logger.Info("Action cooldown", map[string]interface{}{
			"actions":  actions,
			"duration": d.String(),
		})
		return p.cooldown(ctx, d)
	}

	return nil
}

// PageDone records a completed results page and blocks for the page cooldown
// every PageCooldownEvery pages.
func (p *JitterPacer) PageDone(ctx context.Context) error {
	p.mu.Lock()
	p.pages++
	pages := p.pages
	p.mu.Unlock()

	every := p.cfg.Pacing.PageCooldownEvery
	if every > 0 && pages%every == 0 {
		d := p.jitter(p.cfg.Pacing.PageCooldownMin, p.cfg.Pacing.PageCooldownMax)
		p.logger.Info("Page cooldown", map[string]interface{}{
			"pages":    pages,
			"duration": d.String(),
		})
		return p.cooldown(ctx, d)
	}

	return nil
}

// cooldown sleeps in keep-alive sized slices, nudging the session between
// slices so it does not time out.
func (p *JitterPacer) cooldown(ctx context.Context, total time.Duration) error {
	interval := p.cfg.Pacing.KeepAliveInterval
	if interval <= 0 || interval >= total || p.keepAlive == nil {
		return p.sleep(ctx, total)
	}

	remaining := total
	for remaining > 0 {
		slice := interval
		if slice > remaining {
			slice = remaining
		}
		if err := p.sleep(ctx, slice); err != nil {
			return err
		}
		remaining -= slice

		if remaining > 0 {
			p.keepAlive(ctx)
		}
	}
	return nil
}

// jitter returns a random duration in [min, max]
func (p *JitterPacer) jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return min + time.Duration(p.rng.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NopPacer never waits; used in tests
type NopPacer struct{}

func (NopPacer) Wait(context.Context) error     { return nil }
func (NopPacer) PageDone(context.Context) error { return nil }
