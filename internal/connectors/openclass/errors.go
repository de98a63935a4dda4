package openclass

import (
	"errors"
	"fmt"
	"time"
)

// OpenClass-specific errors.
var (
	// ErrNoToken indicates a successful login response carried no token.
	ErrNoToken = errors.New("openclass: no token in login response")

	// ErrInvalidEnvelope indicates the response did not have the expected result.objects shape.
	ErrInvalidEnvelope = errors.New("openclass: invalid response structure")
)

// RateLimitError is returned when the API answers 429.
type RateLimitError struct {
	RetryAfter time.Duration
	URL        string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("openclass: rate limited, retry after %s (URL: %s)", e.RetryAfter, e.URL)
}

// APIError represents a non-2xx OpenClass response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openclass: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsUnauthorized checks if the error indicates rejected credentials or token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
