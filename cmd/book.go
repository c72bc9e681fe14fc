package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/application/scheduler"
	"github.com/example/gym-booker/internal/application/usecases"
	"github.com/example/gym-booker/internal/config"
	"github.com/example/gym-booker/internal/domain/booking"
	"github.com/example/gym-booker/internal/driver"
	"github.com/example/gym-booker/internal/infrastructure/chromedriver"
	"github.com/example/gym-booker/internal/internaltypes"
	"github.com/example/gym-booker/internal/logging"
)

// Swapped in tests.
var (
	newDriver = func(ctx context.Context, opts chromedriver.Options) (driver.Driver, error) {
		return chromedriver.New(ctx, opts)
	}
	newClock = func() usecases.Clock { return usecases.RealClock{} }
)

func newBookCmd() *cobra.Command {
	var (
		headless   bool
		timeSlot   string
		days       int
		slot       int
		startAt    string
		configPath string
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Log in and book one class, retrying the confirmation up to the attempt cap",
		RunE: func(cmd *cobra.Command, args []string) error {
			loadDotEnv()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			req := booking.Request{DayOffset: days, TimeSlot: timeSlot, Slot: slot}
			if err := req.Validate(); err != nil {
				return fmt.Errorf("%w: %v", internaltypes.ErrInvalidConfig, err)
			}

			clock := newClock()
			var at time.Time
			if startAt != "" {
				if at, err = scheduler.NextOccurrence(clock.Now(), startAt); err != nil {
					return fmt.Errorf("%w: --at: %v", internaltypes.ErrInvalidConfig, err)
				}
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("%w: %v", internaltypes.ErrInvalidConfig, err)
			}
			log := logger.With(zap.String("run_id", uuid.NewString()))
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !at.IsZero() {
				r := scheduler.Runner{Clock: clock, Log: log}
				if err := r.WaitUntil(ctx, at); err != nil {
					return err
				}
			}

			d, err := newDriver(ctx, chromedriver.Options{
				Headless:      headless,
				ProfileDir:    cfg.Browser.ProfileDir,
				ExecPath:      cfg.Browser.ExecPath,
				WindowWidth:   cfg.Browser.WindowWidth,
				WindowHeight:  cfg.Browser.WindowHeight,
				ActionTimeout: cfg.Pacing.WaitTimeout,
				Logger:        log.Named("chrome"),
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					log.Warn("closing browser failed", zap.Error(err))
				}
			}()

			log.Info("booking class",
				zap.Int("days", req.DayOffset),
				zap.Int("slot", req.Slot),
				zap.String("time_slot", req.TimeSlot),
				zap.Int("max_attempts", cfg.Pacing.MaxAttempts))

			u := usecases.BookClass{
				Driver:  d,
				Clock:   clock,
				Log:     log,
				Pacing:  cfg.Pacing,
				BaseURL: cfg.BaseURL,
			}
			out, err := u.Execute(ctx, cfg.Credentials, req)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), req, out)
			if !out.Booked() {
				return fmt.Errorf("%w: %s on %s still open after %d attempts",
					internaltypes.ErrBookingNotConfirmed, req.TimeSlot, out.Date.Format("2006-01-02"), out.Attempts)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	c.Flags().StringVar(&timeSlot, "time_slot", "6:00AM - 7:00AM", "class time label, for logs")
	c.Flags().IntVar(&days, "days", booking.MaxDayOffset, "days from today, 0-6")
	c.Flags().IntVar(&slot, "slot", 1, "1-based position of the class in the day's list")
	c.Flags().StringVar(&startAt, "at", "", "wait until this local time (HH:MM) before starting")
	c.Flags().StringVar(&configPath, "config", "", "YAML tuning file (default $GYMBOOK_CONFIG)")
	return c
}

// loadConfig reads --config when given, otherwise the file named by
// GYMBOOK_CONFIG.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	return config.Load(path)
}

// loadDotEnv reads .env from the working directory. Variables already set in
// the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
}

func printOutcome(w io.Writer, req booking.Request, out booking.Outcome) {
	date := out.Date.Format("Mon 2006-01-02")
	switch out.Status {
	case booking.StatusConfirmed:
		color.New(color.FgGreen, color.Bold).Fprintf(w, "BOOKED %s %s (slot %d) after %d attempt(s)\n", date, req.TimeSlot, out.Slot, out.Attempts)
	case booking.StatusAlreadyBooked:
		color.New(color.FgYellow).Fprintf(w, "ALREADY BOOKED %s %s (slot %d)\n", date, req.TimeSlot, out.Slot)
	default:
		color.New(color.FgRed, color.Bold).Fprintf(w, "NOT BOOKED %s %s (slot %d) after %d attempt(s)\n", date, req.TimeSlot, out.Slot, out.Attempts)
	}
}
