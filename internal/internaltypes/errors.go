package internaltypes

import "errors"

var (
	// ErrMissingCredentials is a configuration fault detected before any browser work.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidConfig covers bad flags, env values and config files.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBookingNotConfirmed is the recoverable booking fault: the attempt cap
	// was reached and the site never showed the slot as booked.
	ErrBookingNotConfirmed = errors.New("booking not confirmed")

	// Interaction faults. These abort the run.
	ErrElementNotFound = errors.New("element not found")
	ErrIndexOutOfRange = errors.New("element index out of range")
	ErrNotInteractable = errors.New("element not interactable")
)
