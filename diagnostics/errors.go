package diagnostics

import "errors"

var (
	// ErrCheckFailed indicates a diagnostic check crossed its critical threshold.
	ErrCheckFailed = errors.New("diagnostics: check failed")

	// ErrCheckTimeout indicates a check timed out.
	ErrCheckTimeout = errors.New("diagnostics: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("diagnostics: checker not found")
)
