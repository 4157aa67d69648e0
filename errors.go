package mandel

import "errors"

// Validation errors returned by the sampler before any work starts.
var (
	ErrInvalidRegion       = errors.New("invalid region")
	ErrInvalidDimensions   = errors.New("invalid dimensions")
	ErrInvalidIterationCap = errors.New("invalid iteration cap")
)

// Input errors. ErrCancelled and ErrSelectTimeout end a session normally,
// ErrInputUnavailable means the input device failed.
var (
	ErrCancelled        = errors.New("selection cancelled")
	ErrSelectTimeout    = errors.New("selection timed out")
	ErrInputUnavailable = errors.New("input unavailable")
)
