package signal

import "errors"

// Pipeline error taxonomy. None of these is process-fatal: the worst
// case is always a rejected signal with a reason.
var (
	// ErrInsufficientData means the caller may retry later with more
	// history; the optimizer keeps its prior parameters.
	ErrInsufficientData = errors.New("insufficient candle history")

	// ErrOptimizationInFlight is returned for re-entrant optimizer
	// calls. It is a recoverable no-op, not a failure.
	ErrOptimizationInFlight = errors.New("optimization already in progress")

	// ErrServiceUnavailable means the external reasoning service could
	// not be reached; callers fall back to deterministic rules.
	ErrServiceUnavailable = errors.New("reasoning service unavailable")

	// ErrParseFailure means an external response did not match the
	// expected labeled-field format; callers substitute conservative
	// defaults.
	ErrParseFailure = errors.New("unparsable reasoning response")
)
