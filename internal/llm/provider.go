// Package llm provides the generative-text provider used for the
// analysis narrative.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoAPIKey indicates the provider was created without credentials.
	ErrNoAPIKey = errors.New("llm: API key not configured")
	// ErrProviderDown indicates the provider is unreachable or erroring.
	ErrProviderDown = errors.New("llm: provider unavailable")
	// ErrEmptyCompletion indicates the provider answered with no text.
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// Provider generates a text completion for a single prompt.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, prompt string) (string, error)
}
