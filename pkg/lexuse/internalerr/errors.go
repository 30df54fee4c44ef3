package internalerr

import "errors"

// Sentinel errors for common cases
var (
	// ErrCanceled marks an operator-driven cancellation. It is an expected
	// negative outcome, not a failure.
	ErrCanceled = errors.New("canceled by operator")

	// ErrNoEligibleSense means the lexical entry has no sense carrying both
	// a concept link and a gloss in the target language.
	ErrNoEligibleSense = errors.New("no eligible sense")

	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
