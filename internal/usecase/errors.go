package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrPlanRestricted marks a provider call rejected for plan/tier
	// reasons. Health checks classify it as degraded, not unhealthy.
	ErrPlanRestricted = errors.New("provider plan restricted")
	// ErrSuspectSnapshot marks a sync aborted because the provider
	// returned an empty snapshot where the store previously had data.
	ErrSuspectSnapshot = errors.New("suspect provider snapshot")
)
