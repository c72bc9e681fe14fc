package booking

import (
	"fmt"
	"time"
)

const MaxDayOffset = 6

// Request identifies the class to book. It is fixed for the whole run.
type Request struct {
	// DayOffset is the number of days from today, 0..6.
	DayOffset int
	// TimeSlot is the human label of the class, e.g. "6:00AM - 7:00AM".
	// It is only used for logging; Slot selects the button.
	TimeSlot string
	// Slot is the 1-based position of the class among the day's buttons.
	Slot int
}

func (r Request) Validate() error {
	if r.DayOffset < 0 || r.DayOffset > MaxDayOffset {
		return fmt.Errorf("days must be between 0 and %d (got %d)", MaxDayOffset, r.DayOffset)
	}
	if r.Slot < 1 {
		return fmt.Errorf("slot must be >= 1 (got %d)", r.Slot)
	}
	return nil
}

// TargetDate is the calendar day of the class, relative to now.
func (r Request) TargetDate(now time.Time) time.Time {
	return now.AddDate(0, 0, r.DayOffset)
}

// TabIndex is the zero-based position of the weekday tab for the target day.
func (r Request) TabIndex() int { return r.DayOffset }

// SlotIndex is the zero-based position of the registration button.
func (r Request) SlotIndex() int { return r.Slot - 1 }

// DayContainerID is the id of the element holding the target day's classes.
func (r Request) DayContainerID() string {
	return fmt.Sprintf("%s%d", DayContainerIDPrefix, r.DayOffset+1)
}

type SlotState string

const (
	SlotOpen   SlotState = "open"
	SlotBooked SlotState = "booked"
)

// StateFromAction maps the registration button's class-action attribute to a
// slot state. Anything but the cancel action means the account has not booked.
func StateFromAction(action string) SlotState {
	if action == ActionCancelClass {
		return SlotBooked
	}
	return SlotOpen
}

type Status string

const (
	StatusAlreadyBooked Status = "already-booked"
	StatusConfirmed     Status = "confirmed"
	StatusExhausted     Status = "exhausted"
)

// Outcome is the observable result of the attempt loop.
type Outcome struct {
	Status    Status
	Attempts  int
	Date      time.Time
	Slot      int
	WorkoutID string
}

// Booked reports whether the site shows the slot as held by this account.
func (o Outcome) Booked() bool {
	return o.Status == StatusConfirmed || o.Status == StatusAlreadyBooked
}
