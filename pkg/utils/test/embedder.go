package testutils

import (
	"context"
	"fmt"
)

// defaultEmbedding is returned for any text without a configured vector.
var defaultEmbedding = []float32{0.1, 0.2, 0.3}

// MockEmbedder returns canned embeddings keyed by input text and records
// every call, so tests can assert how often a text was embedded.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn makes Embed fail when the input matches it exactly.
	FailOn string

	// Calls accumulates every text passed to Embed.
	Calls []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.Calls = append(m.Calls, text)

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	return defaultEmbedding, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}
