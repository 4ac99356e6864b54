package sportsfeed

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/eventbus/core/server"
)

type Config struct {
	Metrics server.Config

	AppName  string `env:"APP_NAME" envDefault:"sportsfeed"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MinDelay      time.Duration `env:"FEED_MIN_DELAY" envDefault:"500ms"`
	MaxDelay      time.Duration `env:"FEED_MAX_DELAY" envDefault:"2s"`
	AdDelayFactor int           `env:"FEED_AD_DELAY_FACTOR" envDefault:"2"`
	Locale        string        `env:"FEED_LOCALE" envDefault:"en"`
	IncludeLegacy bool          `env:"FEED_INCLUDE_LEGACY" envDefault:"true"`
}

// DefaultConfig mirrors the environment defaults.
func DefaultConfig() Config {
	return Config{
		AppName:       "sportsfeed",
		Env:           "development",
		LogLevel:      "info",
		MinDelay:      500 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		AdDelayFactor: 2,
		Locale:        "en",
		IncludeLegacy: true,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.MinDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: FEED_MIN_DELAY %s is negative", ErrInvalidDelay, c.MinDelay))
	}
	if c.MaxDelay < c.MinDelay {
		errs = append(errs, fmt.Errorf("%w: FEED_MAX_DELAY %s is below FEED_MIN_DELAY %s", ErrInvalidDelay, c.MaxDelay, c.MinDelay))
	}
	if c.AdDelayFactor < 1 {
		errs = append(errs, ErrInvalidFactor)
	}
	return errors.Join(errs...)
}
