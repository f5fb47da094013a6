// Package memory provides an in-process vector store using brute-force
// nearest-neighbor search. It is the baseline engine: a linear scan over
// every record per query, which keeps correctness obvious and is naturally
// safe for concurrent readers once indexing has finished.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/groundedhq/grounded/pkg/vector"
)

// Store implements vector.Store with in-process data structures.
//
// The store's dimensionality is set by the first inserted document.
// A read-write mutex guards the record set so queries may run concurrently
// with each other; writes take the exclusive lock.
type Store struct {
	metric vector.Metric

	mu sync.RWMutex

	// docs holds records in insertion order. Query ties are broken by this
	// order (earlier-inserted wins), so it must be stable across reads.
	docs []vector.Document

	// index maps document ID to its position in docs.
	index map[string]int

	// dimensions is 0 until the first document is inserted.
	dimensions int
}

// Config holds configuration for the in-memory store.
type Config struct {
	// Metric selects the distance metric. Defaults to cosine similarity.
	Metric vector.Metric
}

// NewStore creates an empty in-memory vector store.
func NewStore(c Config) *Store {
	metric := c.Metric
	if metric == "" {
		metric = vector.MetricCosine
	}
	return &Store{
		metric: metric,
		index:  make(map[string]int),
	}
}

// Metric returns the metric the store ranks with.
func (s *Store) Metric() vector.Metric {
	return s.metric
}

// validate checks a document against the store's invariants. Callers hold
// the write lock. batch maps IDs seen earlier in the same bulk insert.
func (s *Store) validate(doc vector.Document, batch map[string]bool) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", vector.ErrInvalidArgument)
	}
	if len(doc.Embedding) == 0 {
		return fmt.Errorf("%w: document %s has no embedding", vector.ErrInvalidArgument, doc.ID)
	}
	if _, exists := s.index[doc.ID]; exists {
		return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
	}
	if batch != nil && batch[doc.ID] {
		return fmt.Errorf("%w: %s repeated in batch", vector.ErrDuplicateID, doc.ID)
	}
	if s.dimensions != 0 && len(doc.Embedding) != s.dimensions {
		return fmt.Errorf("%w: got %d, store has %d",
			vector.ErrDimensionMismatch, len(doc.Embedding), s.dimensions)
	}
	return nil
}

// store appends a validated document. Callers hold the write lock.
func (s *Store) store(doc vector.Document) {
	if s.dimensions == 0 {
		s.dimensions = len(doc.Embedding)
	}

	// Copy the embedding so callers can't mutate stored state.
	emb := make([]float32, len(doc.Embedding))
	copy(emb, doc.Embedding)
	doc.Embedding = emb

	s.index[doc.ID] = len(s.docs)
	s.docs = append(s.docs, doc)
}

// Insert stores a single document.
func (s *Store) Insert(_ context.Context, doc vector.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(doc, nil); err != nil {
		return err
	}
	s.store(doc)
	return nil
}

// BulkInsert stores documents atomically: every document is validated
// against the store and against the rest of the batch before anything is
// written, so a failure leaves the store unchanged.
func (s *Store) BulkInsert(_ context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First insertion of an empty store fixes the dimensionality; within a
	// batch every document must agree with the first.
	dims := s.dimensions
	batch := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if err := s.validate(doc, batch); err != nil {
			return err
		}
		if dims == 0 {
			dims = len(doc.Embedding)
		} else if len(doc.Embedding) != dims {
			return fmt.Errorf("%w: got %d, batch has %d",
				vector.ErrDimensionMismatch, len(doc.Embedding), dims)
		}
		batch[doc.ID] = true
	}

	for _, doc := range docs {
		s.store(doc)
	}
	return nil
}

// Query scans every record and returns the k highest-scoring documents.
// O(n*d) per call; ties keep insertion order via the stable sort.
func (s *Store) Query(_ context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", vector.ErrInvalidArgument, k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return nil, vector.ErrEmptyStore
	}
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, store has %d",
			vector.ErrDimensionMismatch, len(embedding), s.dimensions)
	}

	results := make([]vector.QueryResult, len(s.docs))
	for i, doc := range s.docs {
		results[i] = vector.QueryResult{
			Document: doc,
			Score:    s.metric.Score(embedding, doc.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	results = results[:k]
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

// Get retrieves documents by their IDs; unknown IDs are skipped.
func (s *Store) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if pos, ok := s.index[id]; ok {
			docs = append(docs, s.docs[pos])
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs. IDs not present are ignored.
func (s *Store) Delete(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.docs[:0]
	for _, doc := range s.docs {
		if !remove[doc.ID] {
			kept = append(kept, doc)
		}
	}
	s.docs = kept

	s.index = make(map[string]int, len(s.docs))
	for i, doc := range s.docs {
		s.index[doc.ID] = i
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Clear removes every document. The dimensionality resets with the store,
// so the next insertion fixes it again.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil
	s.index = make(map[string]int)
	s.dimensions = 0
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements vector.Store
var _ vector.Store = (*Store)(nil)
