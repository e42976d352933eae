package domain

import "errors"

// Failure taxonomy for the recommendation path. Only ErrValidation and
// ErrNoScorerAvailable surface to the caller as hard failures; the rest
// degrade the result.
var (
	ErrValidation          = errors.New("invalid request")
	ErrInsufficientData    = errors.New("insufficient interaction data")
	ErrScorerTimeout       = errors.New("scorer exceeded its time budget")
	ErrUpstreamUnavailable = errors.New("upstream collaborator unavailable")
	ErrNoScorerAvailable   = errors.New("no scorer produced a result")
)
