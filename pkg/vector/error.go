package vector

import "errors"

var (
	// ErrDuplicateID is returned when inserting a document whose ID already
	// exists in the store.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the store's fixed dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyStore is returned when querying a store that holds no documents.
	ErrEmptyStore = errors.New("vector store is empty")

	// ErrInvalidArgument is returned when a query argument is out of range,
	// e.g. a non-positive k.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrNotFound is returned when a document is not found in the store.
	ErrNotFound = errors.New("document not found")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")
)
