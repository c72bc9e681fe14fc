package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/domain/booking"
	"github.com/example/gym-booker/internal/domain/member"
	"github.com/example/gym-booker/internal/driver"
)

// Login fills the member login form and waits for the site to authenticate.
// The form is rendered twice; only the second copy takes input.
func (u BookClass) Login(ctx context.Context, creds member.Credentials) error {
	log := u.logger()
	w := u.waiter()
	url := u.url(booking.LoginPath)

	log.Info("opening login page", zap.String("url", url), zap.Stringer("member", creds))
	if err := u.Driver.Navigate(ctx, url); err != nil {
		return err
	}

	email := driver.Class(booking.ClassLoginEmail)
	if err := w.waitFor(ctx, email); err != nil {
		return err
	}
	if err := typeInto(ctx, u.Driver, email, creds.Username); err != nil {
		return err
	}

	password := driver.Class(booking.ClassLoginPassword)
	if err := w.waitFor(ctx, password); err != nil {
		return err
	}
	if err := typeInto(ctx, u.Driver, password, creds.Password); err != nil {
		return err
	}

	if err := u.Clock.Sleep(ctx, u.Pacing.InputPause); err != nil {
		return err
	}
	if err := clickNth(ctx, u.Driver, driver.Class(booking.ClassLoginSubmit), booking.LoginFieldIndex); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	log.Info("signing in", zap.Duration("settle", u.Pacing.LoginSettle))
	return u.Clock.Sleep(ctx, u.Pacing.LoginSettle)
}

func typeInto(ctx context.Context, d driver.Driver, loc driver.Locator, text string) error {
	field, err := findNth(ctx, d, loc, booking.LoginFieldIndex)
	if err != nil {
		return err
	}
	if err := field.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("type into %s: %w", loc, err)
	}
	return nil
}
