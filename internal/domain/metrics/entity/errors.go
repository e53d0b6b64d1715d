package entity

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for profile metrics
var (
	// Validation errors
	ErrNegativeCount        = errors.New("metric counts cannot be negative")
	ErrTooManyDailyStats    = errors.New("daily stats cannot exceed 30 entries")
	ErrTooManyContentItems  = errors.New("content performance cannot exceed 10 items")
	ErrDailyStatsOutOfOrder = errors.New("daily stat dates must be strictly ascending")
	ErrEmptyIdentifier      = errors.New("a username or profile URL is required")
	ErrUnknownSource        = errors.New("unknown data source")

	// Vendor job errors. All of these are absorbed into a synthetic
	// fallback by the orchestrator, never surfaced to the caller.
	ErrJobStart          = errors.New("vendor job could not be started")
	ErrJobTimeout        = errors.New("timed out waiting for vendor job to finish")
	ErrJobFailed         = errors.New("vendor job finished unsuccessfully")
	ErrEmptyResult       = errors.New("vendor returned no result items")
	ErrVendorAuth        = errors.New("vendor rejected the API credentials")
	ErrVendorRateLimited = errors.New("vendor rate limit exceeded")
	ErrMalformedPayload  = errors.New("malformed vendor payload")
)

// UnsupportedPlatformError is a caller input error and the one vendor-free
// failure that crosses the orchestrator boundary
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %q", e.Platform)
}

// RateLimitError is returned when a scrape lands inside the hard-reject
// window for its rate-limit key
type RateLimitError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited for %s, retry in %s", e.Key, e.RetryAfter.Round(time.Second))
}
