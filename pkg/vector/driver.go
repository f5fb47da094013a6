// Package vector provides the store contract and shared types for vector
// storage and nearest-neighbor retrieval.
package vector

import "context"

// Document represents a stored item with its embedding and text payload.
type Document struct {
	// ID is a unique identifier for the document within a store.
	ID string

	// Text is the document content the embedding was computed from.
	Text string

	// Embedding is the vector representation of the document content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score is the similarity score (higher = more similar). Results are
	// ordered by non-increasing score; ties keep insertion order.
	Score float32

	// Rank is the zero-based position of this result in the ranking.
	Rank int
}

// Store handles storage and retrieval of vector-embedded documents.
//
// A store's dimensionality is fixed by the first inserted document; every
// later insert and query vector must match it. Document IDs are unique
// within a store.
type Store interface {
	// Insert stores a single document. It fails with ErrDuplicateID if the
	// ID already exists and ErrDimensionMismatch if the embedding length
	// differs from the store's dimensionality. A failed Insert leaves the
	// store unchanged.
	Insert(ctx context.Context, doc Document) error

	// BulkInsert stores documents atomically with respect to validation:
	// either every document passes the dimension and duplicate checks and
	// all are inserted, or none are.
	BulkInsert(ctx context.Context, docs []Document) error

	// Query returns the k most similar documents to the given embedding,
	// ranked by non-increasing score. It fails with ErrEmptyStore when the
	// store holds no documents and ErrInvalidArgument when k < 1. If fewer
	// than k documents exist, all of them are returned.
	Query(ctx context.Context, embedding []float32, k int) ([]QueryResult, error)

	// Get retrieves documents by their IDs. Unknown IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Clear removes every document from the store.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
