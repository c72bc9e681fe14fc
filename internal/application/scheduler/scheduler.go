package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/application/usecases"
)

// Runner holds a run back until a wall-clock start time, typically the moment
// the gym opens the booking window.
type Runner struct {
	Clock usecases.Clock
	Log   *zap.Logger
	// Step caps a single sleep so progress is logged and clock jumps are
	// noticed. Defaults to one minute.
	Step time.Duration
}

// NextOccurrence returns the next time at or after now whose local clock
// reads hhmm ("15:04").
func NextOccurrence(now time.Time, hhmm string) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", hhmm, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q (want HH:MM): %w", hhmm, err)
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

// WaitUntil blocks until at or until ctx is done.
func (r Runner) WaitUntil(ctx context.Context, at time.Time) error {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	step := r.Step
	if step <= 0 {
		step = time.Minute
	}

	remaining := at.Sub(r.Clock.Now())
	if remaining <= 0 {
		return nil
	}
	log.Info("waiting for start time", zap.Time("at", at), zap.Duration("remaining", remaining.Round(time.Second)))
	for remaining > 0 {
		d := remaining
		if d > step {
			d = step
		}
		if err := r.Clock.Sleep(ctx, d); err != nil {
			return err
		}
		remaining = at.Sub(r.Clock.Now())
		if remaining > 0 {
			log.Debug("still waiting", zap.Duration("remaining", remaining.Round(time.Second)))
		}
	}
	log.Info("start time reached")
	return nil
}
