package testutils

import (
	"context"
	"errors"
)

// MockCompleter is a test completer with a canned response
type MockCompleter struct {
	// Response is returned by Complete for any prompt.
	Response string

	// Err, when set, is returned instead of a response.
	Err error

	// Prompts accumulates every prompt passed to Complete.
	Prompts []string
}

func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Response, nil
}

func (m *MockCompleter) Close() error {
	return nil
}

// MockStreamCompleter extends MockCompleter with chunked streaming.
type MockStreamCompleter struct {
	MockCompleter

	// Chunks are delivered to the onDelta callback in order.
	Chunks []string
}

func (m *MockStreamCompleter) CompleteStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}

	var full string
	for _, chunk := range m.Chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		full += chunk
		if onDelta != nil {
			onDelta(chunk)
		}
	}
	if full == "" {
		return "", errors.New("mock stream has no chunks")
	}
	return full, nil
}
