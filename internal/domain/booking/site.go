package booking

// Markup contract of goodlifefitness.com. A change on the site side breaks
// the workflow; there is no fallback.
const (
	DefaultBaseURL = "https://www.goodlifefitness.com"

	LoginPath   = "/member-details.html"
	BookingPath = "/book-workout.html#no-redirect"

	ClassLoginEmail    = "js-login-email"
	ClassLoginPassword = "js-login-password"
	ClassLoginSubmit   = "js-login-submit"

	// The login form is rendered twice (desktop and mobile); only the
	// second copy accepts input.
	LoginFieldIndex = 1

	ClassWeekdayTab      = "js-class-weekday"
	WeekdayTabCount      = 7
	DayContainerIDPrefix = "day-number-"
	ClassRegistration    = "class-action"

	IDAgreementCheckbox = "js-workout-booking-agreement-input"
	ClassConfirmButton  = "js-terms-agreement-cta"

	AttrClassAction = "data-class-action"
	AttrWorkoutID   = "data-workout-id"
	AttrDataIndex   = "data-index"
	AttrClass       = "class"

	ActionCancelClass = "cancel-class"
)
