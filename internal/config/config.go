package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/gym-booker/internal/domain/booking"
	"github.com/example/gym-booker/internal/domain/member"
	"github.com/example/gym-booker/internal/internaltypes"
)

type Config struct {
	Credentials member.Credentials
	BaseURL     string
	LogLevel    string

	Pacing  booking.Pacing
	Browser Browser
}

type Browser struct {
	ProfileDir   string
	ExecPath     string
	WindowWidth  int
	WindowHeight int
}

func Default() Config {
	return Config{
		BaseURL:  booking.DefaultBaseURL,
		LogLevel: "info",
		Pacing:   booking.DefaultPacing(),
	}
}

// FromEnv loads configuration from the environment, reading the tuning file
// named by GYMBOOK_CONFIG when set.
func FromEnv() (Config, error) {
	return Load(os.Getenv("GYMBOOK_CONFIG"))
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then the environment. Credentials are checked last so a missing one
// is reported before anything else starts.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Pacing.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: pacing: %v", internaltypes.ErrInvalidConfig, err)
	}

	cfg.Credentials = member.Credentials{
		Username: strings.TrimSpace(os.Getenv("GOODLIFE_USERNAME")),
		Password: os.Getenv("GOODLIFE_PASSWORD"),
	}
	if !cfg.Credentials.Complete() {
		var missing []string
		if cfg.Credentials.Username == "" {
			missing = append(missing, "GOODLIFE_USERNAME")
		}
		if cfg.Credentials.Password == "" {
			missing = append(missing, "GOODLIFE_PASSWORD")
		}
		return Config{}, fmt.Errorf("%w: %s must be set", internaltypes.ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getenv("GOODLIFE_BASE_URL", c.BaseURL)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.Browser.ProfileDir = getenv("BROWSER_PROFILE_DIR", c.Browser.ProfileDir)
	c.Browser.ExecPath = getenv("CHROME_PATH", c.Browser.ExecPath)
}

type fileConfig struct {
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`
	Pacing   struct {
		WaitTimeout     string `yaml:"wait_timeout"`
		PollInterval    string `yaml:"poll_interval"`
		InputPause      string `yaml:"input_pause"`
		LoginSettle     string `yaml:"login_settle"`
		PageSettle      string `yaml:"page_settle"`
		ConfirmCooldown string `yaml:"confirm_cooldown"`
		MaxAttempts     int    `yaml:"max_attempts"`
	} `yaml:"pacing"`
	Browser struct {
		ProfileDir   string `yaml:"profile_dir"`
		ExecPath     string `yaml:"exec_path"`
		WindowWidth  int    `yaml:"window_width"`
		WindowHeight int    `yaml:"window_height"`
	} `yaml:"browser"`
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", internaltypes.ErrInvalidConfig, err)
	}
	var f fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", internaltypes.ErrInvalidConfig, path, err)
	}

	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	durations := []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"wait_timeout", f.Pacing.WaitTimeout, &c.Pacing.WaitTimeout},
		{"poll_interval", f.Pacing.PollInterval, &c.Pacing.PollInterval},
		{"input_pause", f.Pacing.InputPause, &c.Pacing.InputPause},
		{"login_settle", f.Pacing.LoginSettle, &c.Pacing.LoginSettle},
		{"page_settle", f.Pacing.PageSettle, &c.Pacing.PageSettle},
		{"confirm_cooldown", f.Pacing.ConfirmCooldown, &c.Pacing.ConfirmCooldown},
	}
	for _, d := range durations {
		if d.val == "" {
			continue
		}
		v, err := time.ParseDuration(d.val)
		if err != nil {
			return fmt.Errorf("%w: pacing.%s: %v", internaltypes.ErrInvalidConfig, d.key, err)
		}
		*d.dst = v
	}
	if f.Pacing.MaxAttempts != 0 {
		c.Pacing.MaxAttempts = f.Pacing.MaxAttempts
	}

	if f.Browser.ProfileDir != "" {
		c.Browser.ProfileDir = f.Browser.ProfileDir
	}
	if f.Browser.ExecPath != "" {
		c.Browser.ExecPath = f.Browser.ExecPath
	}
	if f.Browser.WindowWidth != 0 {
		c.Browser.WindowWidth = f.Browser.WindowWidth
	}
	if f.Browser.WindowHeight != 0 {
		c.Browser.WindowHeight = f.Browser.WindowHeight
	}
	return nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
