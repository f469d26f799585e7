package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoScoreType is returned when neither a score type nor --all-types
	// is given.
	ErrNoScoreType = errors.New("no score type specified: use --score-type or --all-types")

	// ErrUnknownScoreType is returned for a score type outside say, ea, soz,
	// dil and tyt.
	ErrUnknownScoreType = errors.New("unknown score type")

	// ErrInvalidTimeout is returned when a load or element timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPageSize is returned when the page size is not a positive
	// integer.
	ErrInvalidPageSize = errors.New("invalid page size: must be a positive integer")

	// ErrInvalidDelay is returned when a settle delay or the batch pause is
	// negative. Use 0 for no delay.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidConcurrency is returned when the normalize concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")
)
