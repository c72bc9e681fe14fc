package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/domain/booking"
	"github.com/example/gym-booker/internal/driver"
)

// OpenClass loads the schedule page and returns the registration button of
// the requested class.
func (u BookClass) OpenClass(ctx context.Context, req booking.Request) (driver.Element, error) {
	url := u.url(booking.BookingPath)
	u.logger().Info("opening schedule",
		zap.String("url", url),
		zap.String("date", req.TargetDate(u.Clock.Now()).Format("2006-01-02")),
		zap.String("time_slot", req.TimeSlot))

	if err := u.Driver.Navigate(ctx, url); err != nil {
		return nil, err
	}
	if err := u.Clock.Sleep(ctx, u.Pacing.PageSettle); err != nil {
		return nil, err
	}
	return u.SelectSlot(ctx, req)
}

// SelectSlot clicks the weekday tab and picks the button at the requested
// position inside that day's container.
func (u BookClass) SelectSlot(ctx context.Context, req booking.Request) (driver.Element, error) {
	log := u.logger()
	w := u.waiter()

	tabs := driver.Class(booking.ClassWeekdayTab)
	if err := w.waitFor(ctx, tabs); err != nil {
		return nil, err
	}
	tab, err := findNth(ctx, u.Driver, tabs, req.TabIndex())
	if err != nil {
		return nil, fmt.Errorf("weekday tab: %w", err)
	}
	if err := tab.Click(ctx); err != nil {
		return nil, fmt.Errorf("click weekday tab: %w", err)
	}

	day := driver.ID(req.DayContainerID())
	if err := w.waitFor(ctx, day); err != nil {
		return nil, err
	}
	container, err := findOne(ctx, u.Driver, day)
	if err != nil {
		return nil, fmt.Errorf("day container: %w", err)
	}
	if ce := log.Check(zap.DebugLevel, "day container"); ce != nil {
		class, _ := attr(ctx, container, booking.AttrClass)
		index, _ := attr(ctx, container, booking.AttrDataIndex)
		ce.Write(zap.String("id", req.DayContainerID()), zap.String("class", class), zap.String("data_index", index))
	}

	registration := driver.Class(booking.ClassRegistration)
	if err := w.waitFor(ctx, registration); err != nil {
		return nil, err
	}
	buttons, err := container.FindAll(ctx, registration)
	if err != nil {
		return nil, err
	}
	log.Debug("registration buttons", zap.Int("count", len(buttons)))

	button, err := nth(buttons, req.SlotIndex(), registration)
	if err != nil {
		return nil, fmt.Errorf("class slot: %w", err)
	}
	if ce := log.Check(zap.DebugLevel, "selected class"); ce != nil {
		class, _ := attr(ctx, button, booking.AttrClass)
		workout, _ := attr(ctx, button, booking.AttrWorkoutID)
		ce.Write(zap.Int("slot", req.Slot), zap.String("class", class), zap.String("workout_id", workout))
	}
	return button, nil
}
