// Package llm provides the completion collaborator contract and shared chat
// types for the provider clients.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrCompletion is returned when a completion call fails.
	ErrCompletion = errors.New("completion failed")

	// ErrStreamingNotSupported is returned by CompleteStream when a
	// provider client does not support streaming.
	ErrStreamingNotSupported = errors.New("streaming not supported for this provider")
)

// Completer produces a completion for an assembled prompt. Implementations
// are blocking network clients; callers apply deadlines via the context.
type Completer interface {
	// Complete sends the prompt to the provider and returns the full
	// response text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}

// StreamCompleter is implemented by completers that can deliver the response
// incrementally. The onDelta callback receives each text fragment as it
// arrives; the full concatenated text is returned at the end.
type StreamCompleter interface {
	Completer

	CompleteStream(ctx context.Context, prompt string, onDelta func(string)) (string, error)
}
