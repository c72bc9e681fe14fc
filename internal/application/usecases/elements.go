package usecases

import (
	"context"
	"fmt"

	"github.com/example/gym-booker/internal/driver"
	"github.com/example/gym-booker/internal/internaltypes"
)

func nth(els []driver.Element, i int, loc driver.Locator) (driver.Element, error) {
	if i < 0 || i >= len(els) {
		return nil, fmt.Errorf("%s: index %d of %d matches: %w", loc, i, len(els), internaltypes.ErrIndexOutOfRange)
	}
	return els[i], nil
}

func findNth(ctx context.Context, d driver.Driver, loc driver.Locator, i int) (driver.Element, error) {
	els, err := d.FindAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	return nth(els, i, loc)
}

func findOne(ctx context.Context, d driver.Driver, loc driver.Locator) (driver.Element, error) {
	els, err := d.FindAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, internaltypes.ErrElementNotFound)
	}
	return els[0], nil
}

func clickNth(ctx context.Context, d driver.Driver, loc driver.Locator, i int) error {
	el, err := findNth(ctx, d, loc, i)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// attr reads an attribute for diagnostics; a missing attribute reads as "".
func attr(ctx context.Context, el driver.Element, name string) (string, error) {
	v, _, err := el.Attribute(ctx, name)
	return v, err
}
