package fakedriver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/gym-booker/internal/domain/booking"
	"github.com/example/gym-booker/internal/driver"
)

// SlotRef names one registration button: Day is the 1-based container
// number, Index the 0-based button position inside it.
type SlotRef struct {
	Day   int
	Index int
}

type GymSiteOptions struct {
	BaseURL string
	// Tabs is the number of rendered weekday tabs. Default 7.
	Tabs int
	// SlotsPerDay is the number of registration buttons per day. Default 3.
	SlotsPerDay int
	// LoginCopies is how many copies of the login form are rendered. Default 2.
	LoginCopies int
	// ConfirmsToBook is the number of confirm clicks after which the pending
	// slot shows as booked. Zero means the slot never flips.
	ConfirmsToBook int
	AlreadyBooked  []SlotRef
	// NoAgreement leaves the terms checkbox out of the booking page.
	NoAgreement bool
}

// GymSite simulates the login and booking pages of the gym website.
type GymSite struct {
	*Browser

	opts    GymSiteOptions
	booked  map[SlotRef]bool
	pending *SlotRef
	// tickedIn is the page generation in which the agreement was ticked.
	tickedIn int
	// Confirms counts confirm clicks made with the agreement ticked.
	Confirms int
}

func NewGymSite(opts GymSiteOptions) *GymSite {
	if opts.BaseURL == "" {
		opts.BaseURL = booking.DefaultBaseURL
	}
	if opts.Tabs == 0 {
		opts.Tabs = booking.WeekdayTabCount
	}
	if opts.SlotsPerDay == 0 {
		opts.SlotsPerDay = 3
	}
	if opts.LoginCopies == 0 {
		opts.LoginCopies = 2
	}
	s := &GymSite{opts: opts, booked: map[SlotRef]bool{}}
	for _, ref := range opts.AlreadyBooked {
		s.booked[ref] = true
	}
	s.Browser = New(map[string]Page{
		opts.BaseURL + booking.LoginPath:   s.loginPage,
		opts.BaseURL + booking.BookingPath: s.bookingPage,
	})
	s.Browser.OnClick = s.onClick
	return s
}

func (s *GymSite) Booked(ref SlotRef) bool { return s.booked[ref] }

func (s *GymSite) onClick(c Click) {
	switch {
	case c.On(driver.Class(booking.ClassRegistration)):
		day, _ := strconv.Atoi(c.Attrs["data-day"])
		idx, _ := strconv.Atoi(c.Attrs["data-slot"])
		s.pending = &SlotRef{Day: day, Index: idx}
	case c.On(driver.ID(booking.IDAgreementCheckbox)):
		s.tickedIn = c.Generation
	case c.On(driver.Class(booking.ClassConfirmButton)):
		if s.tickedIn != c.Generation {
			return
		}
		s.Confirms++
		if s.pending != nil && s.opts.ConfirmsToBook > 0 && s.Confirms >= s.opts.ConfirmsToBook {
			s.booked[*s.pending] = true
		}
	}
}

func (s *GymSite) loginPage() string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < s.opts.LoginCopies; i++ {
		fmt.Fprintf(&b, `<form data-copy="%d">`, i)
		fmt.Fprintf(&b, `<input type="email" class="%s">`, booking.ClassLoginEmail)
		fmt.Fprintf(&b, `<input type="password" class="%s">`, booking.ClassLoginPassword)
		fmt.Fprintf(&b, `<button class="%s">Log in</button>`, booking.ClassLoginSubmit)
		b.WriteString("</form>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func (s *GymSite) bookingPage() string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="weekdays">`)
	for d := 1; d <= s.opts.Tabs; d++ {
		fmt.Fprintf(&b, `<li><a href="#" class="%s" data-day="%d">Day %d</a></li>`, booking.ClassWeekdayTab, d, d)
	}
	b.WriteString("</ul>")
	for d := 1; d <= s.opts.Tabs; d++ {
		fmt.Fprintf(&b, `<div id="%s%d" class="day-panel" data-index="%d">`, booking.DayContainerIDPrefix, d, d-1)
		for i := 0; i < s.opts.SlotsPerDay; i++ {
			action := "book-class"
			if s.booked[SlotRef{Day: d, Index: i}] {
				action = booking.ActionCancelClass
			}
			fmt.Fprintf(&b, `<button class="btn %s" data-day="%d" data-slot="%d" data-workout-id="w-%d-%d" data-class-action="%s">Register</button>`,
				booking.ClassRegistration, d, i, d, i, action)
		}
		b.WriteString("</div>")
	}
	if !s.opts.NoAgreement {
		fmt.Fprintf(&b, `<div class="modal"><input type="checkbox" id="%s"><button class="%s">Confirm</button></div>`,
			booking.IDAgreementCheckbox, booking.ClassConfirmButton)
	}
	b.WriteString("</body></html>")
	return b.String()
}
