package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/reconcile"
	"github.com/starford/luach/internal/reminder"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Auth      AuthConfig        `yaml:"auth"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Upcoming  UpcomingConfig    `yaml:"upcoming"`
	Calendar  CalendarConfig    `yaml:"calendar"`
	Reminders RemindersConfig   `yaml:"reminders"`
	SSE       SSEConfig         `yaml:"sse"`
	Seed      SeedConfig        `yaml:"seed"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Auth, &c.Catalog, &c.Upcoming, &c.Calendar, &c.Reminders, &c.SSE,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how sign-in is established:
//   - "disabled" (default): every request counts as signed in, suitable for local use.
//   - "token": a Bearer token signs requests in; Token must be non-empty and may
//     be an argon2id hash produced by the hash-token command.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CatalogConfig selects how catalog entries are recognised among events.
type CatalogConfig struct {
	Match string `yaml:"match"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	if c.Match == "" {
		c.Match = string(reconcile.MatchTitle)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Match, validation.In(string(reconcile.MatchTitle), string(reconcile.MatchProvenance))),
	)
}

// Strategy returns the configured match strategy.
func (c *CatalogConfig) Strategy() reconcile.Strategy {
	return reconcile.Strategy(c.Match)
}

// UpcomingConfig holds the default upcoming window.
type UpcomingConfig struct {
	MaxDays int `yaml:"max_days"`
	Limit   int `yaml:"limit"`
}

// Validate validates the upcoming configuration.
func (c *UpcomingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxDays, validation.Min(0)),
		validation.Field(&c.Limit, validation.Required, validation.Min(1)),
	)
}

// Window returns the configured window.
func (c *UpcomingConfig) Window() agenda.Window {
	return agenda.Window{MaxDays: c.MaxDays, Limit: c.Limit}
}

// CalendarConfig holds month grid settings.
type CalendarConfig struct {
	FirstWeekday string `yaml:"first_weekday"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Validate validates the calendar configuration.
func (c *CalendarConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FirstWeekday, validation.By(func(any) error {
			if c.FirstWeekday == "" {
				return nil
			}
			if _, ok := weekdays[strings.ToLower(c.FirstWeekday)]; !ok {
				return fmt.Errorf("must be a weekday name")
			}
			return nil
		})),
	)
}

// Weekday returns the first column of the grid. Sunday when unset.
func (c *CalendarConfig) Weekday() time.Weekday {
	return weekdays[strings.ToLower(c.FirstWeekday)]
}

// RemindersConfig controls the reminder scheduler.
type RemindersConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Validate validates the reminders configuration.
func (c *RemindersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Schedule,
			validation.When(c.Enabled, validation.Required),
			validation.By(func(any) error {
				if c.Schedule == "" {
					return nil
				}
				return reminder.ValidateSchedule(c.Schedule)
			}),
		),
	)
}

// SSEConfig holds notification stream settings.
type SSEConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// SeedConfig names the initial events.
type SeedConfig struct {
	Path string `yaml:"path"`
	Demo bool   `yaml:"demo"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Catalog: CatalogConfig{
			Match: string(reconcile.MatchTitle),
		},
		Upcoming: UpcomingConfig{
			MaxDays: agenda.DefaultMaxDays,
			Limit:   agenda.DefaultLimit,
		},
		Calendar: CalendarConfig{
			FirstWeekday: "sunday",
		},
		Reminders: RemindersConfig{
			Enabled:  true,
			Schedule: "0 8 * * *",
		},
		SSE: SSEConfig{
			Throttle: 2 * time.Second,
		},
		Seed: SeedConfig{
			Demo: true,
		},
	}
}
