package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/driver"
)

// waiter blocks until elements show up. A timeout is not fatal: it is logged
// and the caller carries on, so the next lookup decides whether the page is
// usable. Only a cancelled context stops the run here.
type waiter struct {
	d       driver.Driver
	clock   Clock
	log     *zap.Logger
	timeout time.Duration
	poll    time.Duration
}

func (w waiter) waitFor(ctx context.Context, loc driver.Locator) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	if w.timeout <= 0 {
		return fmt.Errorf("wait for %s: timeout must be positive", loc)
	}
	err := w.d.WaitPresent(ctx, loc, w.timeout)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, driver.ErrWaitTimeout):
		w.log.Warn("element did not appear, continuing",
			zap.Stringer("locator", loc), zap.Duration("timeout", w.timeout))
		return nil
	default:
		return err
	}
}

// waitForCount polls until at least n elements match loc.
func (w waiter) waitForCount(ctx context.Context, loc driver.Locator, n int) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	if w.timeout <= 0 || w.poll <= 0 {
		return fmt.Errorf("wait for %d x %s: timeout and poll interval must be positive", n, loc)
	}
	deadline := w.clock.Now().Add(w.timeout)
	for {
		els, err := w.d.FindAll(ctx, loc)
		if err != nil {
			return err
		}
		if len(els) >= n {
			return nil
		}
		if !w.clock.Now().Before(deadline) {
			w.log.Warn("fewer elements than expected, continuing",
				zap.Stringer("locator", loc), zap.Int("want", n), zap.Int("got", len(els)))
			return nil
		}
		if err := w.clock.Sleep(ctx, w.poll); err != nil {
			return err
		}
	}
}
