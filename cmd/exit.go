package cmd

import (
	"errors"

	"github.com/example/gym-booker/internal/internaltypes"
)

const (
	ExitOK      = 0
	ExitBooking = 1
	ExitFault   = 2
)

// ExitCode maps a command error to the process exit status: configuration and
// booking faults exit 1, everything else 2.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, internaltypes.ErrMissingCredentials),
		errors.Is(err, internaltypes.ErrInvalidConfig),
		errors.Is(err, internaltypes.ErrBookingNotConfirmed):
		return ExitBooking
	default:
		return ExitFault
	}
}
