// Package index populates a vector store from a set of source documents.
//
// The indexer embeds each document through the configured embedder and
// bulk-inserts the batch, so a validation failure in the store leaves it
// unchanged. Ids are content-derived by default, which makes re-indexing the
// same corpus with PreDelete idempotent.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/embeddings"
	"github.com/groundedhq/grounded/pkg/vector"
)

// FailurePolicy controls how the indexer reacts to per-document embedding
// failures.
type FailurePolicy string

const (
	// FailFast aborts the whole indexing run on the first embedding error.
	// This is the default: a silently incomplete knowledge base is worse
	// than a loud failure.
	FailFast FailurePolicy = "fail-fast"

	// SkipAndReport skips documents whose embedding fails and reports them
	// in the returned Report.
	SkipAndReport FailurePolicy = "skip-and-report"
)

// ParseFailurePolicy maps a configuration string to a FailurePolicy.
// An empty string selects FailFast.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "":
		return FailFast, nil
	case FailFast, SkipAndReport:
		return FailurePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown indexing failure policy %q", s)
	}
}

// Document is a source document to index. An empty ID is assigned from the
// text content, so the same corpus always produces the same ids.
type Document struct {
	ID   string
	Text string
}

// Failure records a document the indexer skipped under SkipAndReport.
type Failure struct {
	ID  string
	Err error
}

// Report summarizes an indexing run.
type Report struct {
	// Indexed is the number of documents inserted into the store.
	Indexed int

	// Skipped lists documents whose embedding failed, only populated under
	// the SkipAndReport policy.
	Skipped []Failure
}

// Config holds configuration for the indexer.
type Config struct {
	// Policy selects the failure policy. Defaults to FailFast.
	Policy FailurePolicy

	// PreDelete clears the store before indexing, making a re-run of the
	// same corpus equivalent to indexing into a fresh store.
	PreDelete bool
}

// Indexer embeds documents and loads them into a vector store.
type Indexer struct {
	store    vector.Store
	embedder embeddings.Embedder
	config   Config
	logger   *zap.Logger
}

// New creates an indexer over the given store and embedder.
func New(store vector.Store, embedder embeddings.Embedder, config Config, logger *zap.Logger) *Indexer {
	if config.Policy == "" {
		config.Policy = FailFast
	}
	return &Indexer{
		store:    store,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// DocumentID derives a stable id from document text.
func DocumentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// Index embeds every document and bulk-inserts the batch into the store.
// Under FailFast the first embedding error aborts the run with nothing
// inserted; under SkipAndReport failed documents are collected in the
// report and the rest are inserted.
func (ix *Indexer) Index(ctx context.Context, docs []Document) (*Report, error) {
	if ix.config.PreDelete {
		if err := ix.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clearing store before indexing: %w", err)
		}
	}

	report := &Report{}
	records := make([]vector.Document, 0, len(docs))

	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = DocumentID(doc.Text)
		}

		emb, err := ix.embedder.Embed(ctx, doc.Text)
		if err != nil {
			if !errors.Is(err, vector.ErrEmbedding) {
				err = fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
			}

			if ix.config.Policy == SkipAndReport {
				ix.logger.Warn("skipping document after embedding failure",
					zap.String("id", id),
					zap.Error(err),
				)
				report.Skipped = append(report.Skipped, Failure{ID: id, Err: err})
				continue
			}
			return nil, fmt.Errorf("embedding document %s: %w", id, err)
		}

		records = append(records, vector.Document{
			ID:        id,
			Text:      doc.Text,
			Embedding: emb,
		})
	}

	if len(records) > 0 {
		if err := ix.store.BulkInsert(ctx, records); err != nil {
			return nil, fmt.Errorf("inserting documents: %w", err)
		}
	}
	report.Indexed = len(records)

	ix.logger.Info("indexed documents",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", len(report.Skipped)),
	)

	return report, nil
}
