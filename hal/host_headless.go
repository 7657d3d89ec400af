//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunFunc is the application side of a host runner. It owns the HAL until
// ctx is done.
type RunFunc func(ctx context.Context, h HAL) error

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Hz is how often wall-clock time is sampled into timer ticks.
	Hz int
	// Ticks stops the run after this many timer ticks. Zero runs until ctx
	// is done.
	Ticks uint64
}

// RunHeadless runs the application without opening a window.
func RunHeadless(ctx context.Context, run RunFunc, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 1000
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost()
	h.t.limit = cfg.Ticks

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				if h.t.step(1) {
					// Let the application drain what was delivered.
					time.Sleep(10 * d)
					cancel()
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		return run(ctx, h)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
