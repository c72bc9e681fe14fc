// Package driver defines the browser surface the booking workflow needs.
//
// Element handles belong to the page generation they were located in. Any
// navigation or reload starts a new generation and every older handle fails
// with ErrStaleElement; callers must locate elements again.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrStaleElement = errors.New("stale element handle")
	ErrWaitTimeout  = errors.New("wait timed out")
	ErrClosed       = errors.New("browser closed")
)

type Strategy int

const (
	ByClass Strategy = iota
	ByID
)

func (s Strategy) String() string {
	switch s {
	case ByClass:
		return "class"
	case ByID:
		return "id"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Locator selects elements by a single stable attribute.
type Locator struct {
	By    Strategy
	Value string
}

func Class(name string) Locator { return Locator{By: ByClass, Value: name} }
func ID(id string) Locator      { return Locator{By: ByID, Value: id} }

func (l Locator) String() string { return l.By.String() + "=" + l.Value }

// CSS renders the locator as a CSS selector.
func (l Locator) CSS() string {
	if l.By == ByID {
		return "#" + l.Value
	}
	return "." + l.Value
}

func (l Locator) Validate() error {
	if l.Value == "" {
		return errors.New("locator value is required")
	}
	if l.By != ByClass && l.By != ByID {
		return fmt.Errorf("unknown locator strategy %v", l.By)
	}
	return nil
}

type Element interface {
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	// Attribute returns the current value and whether the attribute exists.
	Attribute(ctx context.Context, name string) (string, bool, error)
	// FindAll returns descendants matching loc, in document order.
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
}

type Driver interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	// FindAll returns matches in document order; no match is an empty slice.
	FindAll(ctx context.Context, loc Locator) ([]Element, error)
	// WaitPresent blocks until loc matches at least one element. It returns
	// ErrWaitTimeout when timeout elapses first.
	WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) error
	ScrollToBottom(ctx context.Context) error
	Close() error
}
