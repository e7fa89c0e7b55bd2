package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound means an upstream answered cleanly with "no such thing":
// an empty catalog result list, an unparseable payload, or an empty search
// result. It is user-visible and never treated as a failure.
var ErrNotFound = errors.New("not found")

// ProviderError means an external source could not answer at all: network
// failure, timeout, or a 5xx/4xx status. Raised by the search provider it
// aborts the lookup; raised by an enrichment provider it only blanks the
// corresponding field.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err as a ProviderError for the named provider.
func NewProviderError(provider string, err error) error {
	return &ProviderError{Provider: provider, Err: err}
}

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
