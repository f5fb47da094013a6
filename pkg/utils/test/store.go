package testutils

import (
	"context"

	"github.com/groundedhq/grounded/pkg/vector"
)

// MockStore is a test vector store that records calls and returns
// configurable results.
type MockStore struct {
	// Inserted accumulates all documents passed to Insert and BulkInsert.
	Inserted []vector.Document

	// Results is returned by Query, truncated to the requested k.
	Results []vector.QueryResult

	// QueryEmbeddings accumulates every embedding passed to Query.
	QueryEmbeddings [][]float32

	// FailInsert causes Insert and BulkInsert to return an error.
	FailInsert error

	// FailQuery causes Query to return an error.
	FailQuery error

	// Cleared counts Clear calls.
	Cleared int
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Insert(_ context.Context, doc vector.Document) error {
	if m.FailInsert != nil {
		return m.FailInsert
	}
	m.Inserted = append(m.Inserted, doc)
	return nil
}

func (m *MockStore) BulkInsert(_ context.Context, docs []vector.Document) error {
	if m.FailInsert != nil {
		return m.FailInsert
	}
	m.Inserted = append(m.Inserted, docs...)
	return nil
}

func (m *MockStore) Query(_ context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	m.QueryEmbeddings = append(m.QueryEmbeddings, embedding)

	if m.FailQuery != nil {
		return nil, m.FailQuery
	}
	if k < 1 {
		return nil, vector.ErrInvalidArgument
	}
	if len(m.Results) < k {
		return m.Results, nil
	}
	return m.Results[:k], nil
}

func (m *MockStore) Get(_ context.Context, _ []string) ([]vector.Document, error) {
	return m.Inserted, nil
}

func (m *MockStore) Delete(_ context.Context, _ []string) error {
	return nil
}

func (m *MockStore) Count(_ context.Context) (int, error) {
	return len(m.Inserted), nil
}

func (m *MockStore) Clear(_ context.Context) error {
	m.Cleared++
	m.Inserted = nil
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

var _ vector.Store = (*MockStore)(nil)
