// Package llm abstracts text-completion providers.
package llm

import (
	"context"
	"errors"
)

// Client abstracts a text-completion capability.
type Client interface {
	// Complete sends a prompt and returns the completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrUnavailable is returned when the provider is not configured (e.g. missing
// credentials). Callers treat it as a skip condition, distinct from a call that
// was attempted and failed.
var ErrUnavailable = errors.New("llm provider unavailable")

// Available reports whether the client can be expected to serve calls.
func Available(c Client) bool {
	if c == nil {
		return false
	}
	if u, ok := c.(interface{ Available() bool }); ok {
		return u.Available()
	}
	return true
}

// Unavailable is the client used when no provider is configured.
type Unavailable struct{}

// Complete always returns ErrUnavailable.
func (Unavailable) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrUnavailable
}

// Available reports false.
func (Unavailable) Available() bool { return false }
