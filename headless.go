package grove

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// HeadlessConfig controls RunHeadless.
type HeadlessConfig struct {
	Hz    int    // cycles per second; 0 selects the window TPS, then 60
	Ticks uint64 // stop after this many cycles; 0 runs until quit or ctx ends

	// Unthrottled runs cycles back to back instead of waiting for a ticker.
	// Each cycle still sees a delta of one period.
	Unthrottled bool
}

// RunHeadless drives the app without a window: a fixed delta of 1/Hz per
// cycle, no drawing. It returns nil when a system quits or the tick budget
// is reached, ctx.Err() when ctx ends first, and any system error.
func (a *App[P]) RunHeadless(ctx context.Context, cfg HeadlessConfig) error {
	if err := a.Err(); err != nil {
		return err
	}
	defer a.Close()

	if cfg.Hz <= 0 {
		cfg.Hz = a.cfg.Window.TPS
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("grove: invalid headless hz: %d", cfg.Hz)
	}
	a.log.Info("starting headless",
		zap.Int("hz", cfg.Hz),
		zap.Uint64("ticks", cfg.Ticks),
		zap.Bool("unthrottled", cfg.Unthrottled),
	)

	var tick <-chan time.Time
	if !cfg.Unthrottled {
		t := time.NewTicker(d)
		defer t.Stop()
		tick = t.C
	}

	var n uint64
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := a.Step(d); err != nil {
			if errors.Is(err, ebiten.Termination) {
				return nil
			}
			return err
		}
		n++
		if cfg.Ticks > 0 && n >= cfg.Ticks {
			return nil
		}
	}
}
