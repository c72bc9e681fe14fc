package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gym-booker/internal/application/usecases"
	"github.com/example/gym-booker/internal/driver"
	"github.com/example/gym-booker/internal/driver/fakedriver"
	"github.com/example/gym-booker/internal/infrastructure/chromedriver"
	"github.com/example/gym-booker/internal/internaltypes"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

type harness struct {
	clock   *testClock
	site    *fakedriver.GymSite
	opts    []chromedriver.Options
	started time.Time
}

// stubBrowser replaces the chrome launcher and the wall clock for one test.
func stubBrowser(t *testing.T, site fakedriver.GymSiteOptions) *harness {
	t.Helper()
	h := &harness{
		clock: &testClock{now: time.Date(2026, 10, 17, 5, 59, 0, 0, time.Local)},
		site:  fakedriver.NewGymSite(site),
	}
	prevDriver, prevClock := newDriver, newClock
	newDriver = func(ctx context.Context, opts chromedriver.Options) (driver.Driver, error) {
		h.opts = append(h.opts, opts)
		h.started = h.clock.Now()
		return h.site, nil
	}
	newClock = func() usecases.Clock { return h.clock }
	t.Cleanup(func() { newDriver, newClock = prevDriver, prevClock })

	for _, k := range []string{"GOODLIFE_BASE_URL", "BROWSER_PROFILE_DIR", "CHROME_PATH", "GYMBOOK_CONFIG"} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("GOODLIFE_USERNAME", "ada@example.com")
	t.Setenv("GOODLIFE_PASSWORD", "s3cret")
	return h
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: 0},
		{err: fmt.Errorf("x: %w", internaltypes.ErrMissingCredentials), want: 1},
		{err: fmt.Errorf("x: %w", internaltypes.ErrInvalidConfig), want: 1},
		{err: fmt.Errorf("x: %w", internaltypes.ErrBookingNotConfirmed), want: 1},
		{err: fmt.Errorf("x: %w", internaltypes.ErrIndexOutOfRange), want: 2},
		{err: fmt.Errorf("x: %w", driver.ErrStaleElement), want: 2},
		{err: fmt.Errorf("click: %w", internaltypes.ErrNotInteractable), want: 2},
		{err: context.Canceled, want: 2},
		{err: errors.New("chrome failed to start"), want: 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run("version")
	require.NoError(t, err)
	assert.Equal(t, "gymbook dev (commit=none, built=unknown)\n", out)
}

func TestBookMissingCredentialsNeverStartsBrowser(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{})
	t.Setenv("GOODLIFE_PASSWORD", "")

	_, err := run("book")
	require.ErrorIs(t, err, internaltypes.ErrMissingCredentials)
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, h.opts)
	assert.Zero(t, h.site.Interactions())
}

func TestBookInvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"book", "--days", "7"},
		{"book", "--slot", "0"},
		{"book", "--slot", "first"},
		{"book", "--at", "6am"},
	} {
		h := stubBrowser(t, fakedriver.GymSiteOptions{})
		_, err := run(args...)
		require.ErrorIs(t, err, internaltypes.ErrInvalidConfig, "%v", args)
		assert.Equal(t, 1, ExitCode(err))
		assert.Empty(t, h.opts)
	}
}

func TestBookConfirmed(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{ConfirmsToBook: 2})

	out, err := run("book", "--headless", "--days", "2", "--slot", "3", "--time_slot", "7:00AM - 8:00AM")
	require.NoError(t, err)

	assert.Contains(t, out, "BOOKED Mon 2026-10-19 7:00AM - 8:00AM (slot 3) after 2 attempt(s)")
	assert.True(t, h.site.Booked(fakedriver.SlotRef{Day: 3, Index: 2}))
	assert.True(t, h.site.Closed())
	require.Len(t, h.opts, 1)
	assert.True(t, h.opts[0].Headless)
	assert.Equal(t, 10*time.Second, h.opts[0].ActionTimeout)
	assert.NotNil(t, h.opts[0].Logger)
}

func TestBookAlreadyBooked(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{AlreadyBooked: []fakedriver.SlotRef{{Day: 7, Index: 0}}})

	out, err := run("book")
	require.NoError(t, err)
	assert.Contains(t, out, "ALREADY BOOKED")
	assert.Zero(t, h.site.Confirms)
	assert.False(t, h.opts[0].Headless)
}

func TestBookExhaustedIsBookingFault(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{})
	path := filepath.Join(t.TempDir(), "gymbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pacing:\n  max_attempts: 2\nbrowser:\n  profile_dir: /tmp/gym-profile\n"), 0o600))

	out, err := run("book", "--config", path)
	require.ErrorIs(t, err, internaltypes.ErrBookingNotConfirmed)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, out, "NOT BOOKED")
	assert.Equal(t, 2, h.site.Confirms)
	assert.Equal(t, "/tmp/gym-profile", h.opts[0].ProfileDir)
	assert.True(t, h.site.Closed())
}

func TestBookInteractionFault(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{Tabs: 3})

	_, err := run("book", "--days", "5")
	require.ErrorIs(t, err, internaltypes.ErrIndexOutOfRange)
	assert.Equal(t, 2, ExitCode(err))
	assert.True(t, h.site.Closed())
}

func TestBookWaitsForStartTime(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{AlreadyBooked: []fakedriver.SlotRef{{Day: 7, Index: 0}}})

	_, err := run("book", "--at", "06:00")
	require.NoError(t, err)
	assert.Equal(t, "06:00", h.started.Format("15:04"))
}

func TestBookReadsConfigNamedByEnv(t *testing.T) {
	h := stubBrowser(t, fakedriver.GymSiteOptions{})
	path := filepath.Join(t.TempDir(), "gymbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pacing:\n  max_attempts: 1\n  wait_timeout: 4s\n"), 0o600))
	t.Setenv("GYMBOOK_CONFIG", path)

	_, err := run("book")
	require.ErrorIs(t, err, internaltypes.ErrBookingNotConfirmed)
	assert.Equal(t, 1, h.site.Confirms)
	assert.Equal(t, 4*time.Second, h.opts[0].ActionTimeout)
}
