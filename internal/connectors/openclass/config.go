package openclass

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultAPIBase is the public OpenClass API endpoint.
	DefaultAPIBase = "https://api.openclass.ai"

	// DefaultOrigin is the Origin header the API expects from the classroom app.
	DefaultOrigin = "https://classroom.code-you.org"

	// DefaultAppID identifies the classroom web app to the API.
	DefaultAppID = "38e8433f3fd003aa0f650125e9ff1e9427d476796e37803cea9942ff7cc31cd0"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the return_count sent with progression requests.
	DefaultPageSize = 200

	// DefaultRequestInterval is the minimum spacing between requests.
	DefaultRequestInterval = 500 * time.Millisecond
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds OpenClass connection settings.
type Config struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	APIBase  string `validate:"required,url"`
	Origin   string `validate:"required,url"`
	AppID    string `validate:"required"`

	Timeout         time.Duration `validate:"gt=0"`
	PageSize        int           `validate:"min=1,max=1000"`
	RequestInterval time.Duration `validate:"gte=0"`
}

// DefaultConfig returns a config with every non-credential field set.
func DefaultConfig() Config {
	return Config{
		APIBase:         DefaultAPIBase,
		Origin:          DefaultOrigin,
		AppID:           DefaultAppID,
		Timeout:         DefaultTimeout,
		PageSize:        DefaultPageSize,
		RequestInterval: DefaultRequestInterval,
	}
}

// Validate checks the config before any network call.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("openclass: invalid config: %w", err)
	}
	return nil
}
