package model

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a chat request reaches provider
// resolution without a credential. The request must never be dispatched
// in that case; the HTTP boundary maps this to a 400 response.
var ErrMissingAPIKey = errors.New("missing API key")

// CompletionError reports a provider or network failure during streaming.
// It carries the upstream HTTP status when the provider SDK exposes one.
// Completions are not retried automatically; retry is caller policy.
type CompletionError struct {
	Provider string
	Status   int
	Err      error
}

func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s completion failed (status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
