// Package embeddings defines the embedding provider contract shared by the
// indexing and retrieval paths.
package embeddings

import "context"

// Embedder converts text into dense vector embeddings. Implementations must
// produce vectors of a fixed dimensionality for the lifetime of the embedder.
type Embedder interface {
	// Embed returns the vector embedding for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
