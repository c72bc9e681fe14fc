package booking

import (
	"errors"
	"time"
)

// Pacing holds every pause and bound the workflow uses. The site gives no
// readiness signal for most steps, so these are fixed durations.
type Pacing struct {
	// WaitTimeout bounds each wait-for-element.
	WaitTimeout time.Duration
	// PollInterval is the re-check period for count-based waits.
	PollInterval time.Duration
	// InputPause follows typing or ticking before the next click.
	InputPause time.Duration
	// LoginSettle lets the server finish authentication after submit.
	LoginSettle time.Duration
	// PageSettle follows navigation to the schedule page.
	PageSettle time.Duration
	// ConfirmCooldown separates a confirm click from the reload that checks it.
	ConfirmCooldown time.Duration
	MaxAttempts     int
}

func DefaultPacing() Pacing {
	return Pacing{
		WaitTimeout:     10 * time.Second,
		PollInterval:    250 * time.Millisecond,
		InputPause:      time.Second,
		LoginSettle:     10 * time.Second,
		PageSettle:      2 * time.Second,
		ConfirmCooldown: 60 * time.Second,
		MaxAttempts:     5,
	}
}

func (p Pacing) Validate() error {
	switch {
	case p.WaitTimeout <= 0:
		return errors.New("wait_timeout must be positive")
	case p.PollInterval <= 0:
		return errors.New("poll_interval must be positive")
	case p.InputPause < 0, p.LoginSettle < 0, p.PageSettle < 0, p.ConfirmCooldown < 0:
		return errors.New("pauses must not be negative")
	case p.MaxAttempts < 1:
		return errors.New("max_attempts must be >= 1")
	}
	return nil
}
