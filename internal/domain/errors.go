package domain

import (
	"errors"
	"fmt"
)

// ErrExhausted signals that no candidate could serve the request. It is an
// expected outcome under load; callers fall back to their own behavior.
var ErrExhausted = errors.New("all candidates exhausted")

// ErrInvalidRequest indicates a request that cannot be attempted at all.
var ErrInvalidRequest = errors.New("invalid request")

// ErrCacheMiss indicates no cached entry was found.
var ErrCacheMiss = errors.New("cache miss")

// ProviderError carries the raw failure of a provider call so it can be
// classified from its status code and body alone.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider call failed: %s", e.Body)
	}
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
