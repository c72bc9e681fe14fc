package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/domain/booking"
	"github.com/example/gym-booker/internal/domain/member"
	"github.com/example/gym-booker/internal/driver"
)

// BookClass signs in, opens the requested class and keeps confirming it until
// the site shows it as booked or the attempt cap is reached.
type BookClass struct {
	Driver  driver.Driver
	Clock   Clock
	Log     *zap.Logger
	Pacing  booking.Pacing
	BaseURL string
}

func (u BookClass) validate() error {
	if u.Driver == nil {
		return fmt.Errorf("driver is nil")
	}
	if u.Clock == nil {
		return fmt.Errorf("clock is nil")
	}
	return u.Pacing.Validate()
}

func (u BookClass) logger() *zap.Logger {
	if u.Log == nil {
		return zap.NewNop()
	}
	return u.Log
}

func (u BookClass) url(path string) string {
	base := u.BaseURL
	if base == "" {
		base = booking.DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + path
}

func (u BookClass) waiter() waiter {
	return waiter{
		d:       u.Driver,
		clock:   u.Clock,
		log:     u.logger(),
		timeout: u.Pacing.WaitTimeout,
		poll:    u.Pacing.PollInterval,
	}
}

// Execute runs the whole workflow. An exhausted attempt loop is reported in
// the Outcome, not as an error; errors are interaction faults or cancellation.
func (u BookClass) Execute(ctx context.Context, creds member.Credentials, req booking.Request) (booking.Outcome, error) {
	if err := u.validate(); err != nil {
		return booking.Outcome{}, err
	}
	if err := req.Validate(); err != nil {
		return booking.Outcome{}, err
	}
	if err := u.Login(ctx, creds); err != nil {
		return booking.Outcome{}, fmt.Errorf("login: %w", err)
	}
	button, err := u.OpenClass(ctx, req)
	if err != nil {
		return booking.Outcome{}, fmt.Errorf("open class: %w", err)
	}
	return u.Attempt(ctx, req, button)
}

// Attempt is the bounded confirm/reload loop. button must be the registration
// button located in the current page.
func (u BookClass) Attempt(ctx context.Context, req booking.Request, button driver.Element) (booking.Outcome, error) {
	log := u.logger().With(zap.String("time_slot", req.TimeSlot), zap.Int("slot", req.Slot))
	out := booking.Outcome{
		Date: req.TargetDate(u.Clock.Now()),
		Slot: req.Slot,
	}

	for {
		action, err := attr(ctx, button, booking.AttrClassAction)
		if err != nil {
			return out, fmt.Errorf("read slot state: %w", err)
		}
		if out.WorkoutID, err = attr(ctx, button, booking.AttrWorkoutID); err != nil {
			return out, fmt.Errorf("read workout id: %w", err)
		}

		if booking.StateFromAction(action) == booking.SlotBooked {
			out.Status = booking.StatusConfirmed
			if out.Attempts == 0 {
				out.Status = booking.StatusAlreadyBooked
			}
			log.Info("class is booked",
				zap.String("status", string(out.Status)), zap.Int("attempts", out.Attempts))
			return out, nil
		}
		if out.Attempts >= u.Pacing.MaxAttempts {
			out.Status = booking.StatusExhausted
			log.Warn("giving up, class still not booked", zap.Int("attempts", out.Attempts))
			return out, nil
		}

		log.Info("confirming booking", zap.Int("attempt", out.Attempts+1), zap.Int("max", u.Pacing.MaxAttempts))
		if err := u.confirm(ctx, button); err != nil {
			return out, fmt.Errorf("attempt %d: %w", out.Attempts+1, err)
		}
		if button, err = u.refresh(ctx, req); err != nil {
			return out, fmt.Errorf("attempt %d: %w", out.Attempts+1, err)
		}
		out.Attempts++
	}
}

// confirm clicks the registration button and accepts the terms modal.
func (u BookClass) confirm(ctx context.Context, button driver.Element) error {
	w := u.waiter()
	if err := button.Click(ctx); err != nil {
		return fmt.Errorf("click registration: %w", err)
	}
	agreement := driver.ID(booking.IDAgreementCheckbox)
	if err := w.waitFor(ctx, agreement); err != nil {
		return err
	}
	if err := u.Driver.ScrollToBottom(ctx); err != nil {
		return err
	}
	box, err := findOne(ctx, u.Driver, agreement)
	if err != nil {
		return err
	}
	if err := box.Click(ctx); err != nil {
		return fmt.Errorf("tick agreement: %w", err)
	}
	if err := u.Clock.Sleep(ctx, u.Pacing.InputPause); err != nil {
		return err
	}
	cta, err := findOne(ctx, u.Driver, driver.Class(booking.ClassConfirmButton))
	if err != nil {
		return err
	}
	if err := cta.Click(ctx); err != nil {
		return fmt.Errorf("click confirm: %w", err)
	}
	return nil
}

// refresh waits out the cooldown, reloads and locates the button again; every
// handle from before the reload is stale.
func (u BookClass) refresh(ctx context.Context, req booking.Request) (driver.Element, error) {
	u.logger().Debug("cooling down before reload", zap.Duration("cooldown", u.Pacing.ConfirmCooldown))
	if err := u.Clock.Sleep(ctx, u.Pacing.ConfirmCooldown); err != nil {
		return nil, err
	}
	if err := u.Driver.Reload(ctx); err != nil {
		return nil, err
	}
	tabs := driver.Class(booking.ClassWeekdayTab)
	if err := u.waiter().waitForCount(ctx, tabs, booking.WeekdayTabCount); err != nil {
		return nil, err
	}
	return u.SelectSlot(ctx, req)
}
