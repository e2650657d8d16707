package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic error handling while still providing human-readable
// messages.
var (
	// ErrNoVehicle is returned when the vehicle URL identity (base URL,
	// vehicle path, frame name, trim code) is incomplete. Without all four
	// segments the crawl seed cannot be composed.
	ErrNoVehicle = errors.New("incomplete vehicle identity: base URL, vehicle path, frame name and trim code are all required")

	// ErrNoFrameNo is returned when no frame number is configured.
	// The source resolves part applicability per frame number, so crawling
	// without one would silently produce a catalog for the wrong unit.
	ErrNoFrameNo = errors.New("no frame number configured: set frame_no in the config file or via --frame-no")

	// ErrInvalidDelayBounds is returned when the fetch delays do not
	// satisfy 0 < min <= initial <= max.
	ErrInvalidDelayBounds = errors.New("invalid fetch delays: require 0 < min-delay <= initial-delay <= max-delay")

	// ErrInvalidBackoffMultiplier is returned when the backoff multiplier
	// is not greater than 1. A multiplier of 1 or less could never grow
	// the delay under throttling.
	ErrInvalidBackoffMultiplier = errors.New("invalid backoff multiplier: must be greater than 1.0")

	// ErrInvalidFetchRetries is returned when the per-URL retry count is
	// not positive.
	ErrInvalidFetchRetries = errors.New("invalid fetch retries: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive. A zero timeout would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
