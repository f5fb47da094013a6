// Package retrieve turns a natural-language query into ranked documents.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/embeddings"
	"github.com/groundedhq/grounded/pkg/vector"
)

// DefaultTopK is the number of documents retrieved when the caller does not
// ask for a specific count.
const DefaultTopK = 4

// Config holds configuration for the retriever.
type Config struct {
	// TopK is the default result count for Retrieve. Defaults to
	// DefaultTopK when zero.
	TopK int
}

// Retriever embeds queries and searches a vector store.
type Retriever struct {
	store    vector.Store
	embedder embeddings.Embedder
	config   Config
	logger   *zap.Logger
}

// New creates a retriever over the given store and embedder.
func New(store vector.Store, embedder embeddings.Embedder, config Config, logger *zap.Logger) *Retriever {
	if config.TopK < 1 {
		config.TopK = DefaultTopK
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Retrieve embeds the query once and returns up to the configured number of
// results, ranked by score.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]vector.QueryResult, error) {
	return r.RetrieveK(ctx, query, r.config.TopK)
}

// RetrieveK is Retrieve with an explicit result count.
func (r *Retriever) RetrieveK(ctx context.Context, query string, k int) ([]vector.QueryResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", vector.ErrInvalidArgument)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", vector.ErrInvalidArgument, k)
	}

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, vector.ErrEmbedding) {
			err = fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
		}
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.store.Query(ctx, emb, k)
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}

	r.logger.Debug("retrieved documents",
		zap.Int("k", k),
		zap.Int("results", len(results)),
	)

	return results, nil
}
