// Package sqlitevec provides a SQLite-backed vector store using sqlite-vec.
//
// It keeps the brute-force store's query contract but persists records in a
// vec0 virtual table, so the serving phase can restart without re-embedding
// the corpus.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/vector"
)

// Store implements vector.Store using SQLite with sqlite-vec.
type Store struct {
	db         *sql.DB
	dimensions int
	metric     vector.Metric
	logger     *zap.Logger
}

// Config holds configuration for the sqlite-vec store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	// Required; the vec0 table is declared with a fixed size.
	Dimensions uint

	// Metric selects the distance metric. Defaults to cosine.
	Metric vector.Metric
}

// NewStore creates a sqlite-vec-backed vector store.
func NewStore(c Config, logger *zap.Logger) (*Store, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	metric := c.Metric
	if metric == "" {
		metric = vector.MetricCosine
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// vec0 virtual tables use integer rowids, so a mapping table carries
	// the string document IDs and the text payload.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL UNIQUE,
			text TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	distanceOpt := "l2"
	if metric == vector.MetricCosine {
		distanceOpt = "cosine"
	}
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS embeddings USING vec0(embedding float[%d] distance_metric=%s)`,
		c.Dimensions, distanceOpt,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector store initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("metric", string(metric)),
		zap.String("vec_version", vecVersion),
	)

	return &Store{
		db:         db,
		dimensions: int(c.Dimensions),
		metric:     metric,
		logger:     logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// validate checks a document against the store's dimensionality.
func (s *Store) validate(doc vector.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", vector.ErrInvalidArgument)
	}
	if len(doc.Embedding) != s.dimensions {
		return fmt.Errorf("%w: got %d, store has %d",
			vector.ErrDimensionMismatch, len(doc.Embedding), s.dimensions)
	}
	return nil
}

// insertTx inserts a single document inside an open transaction.
func (s *Store) insertTx(ctx context.Context, tx *sql.Tx, doc vector.Document) error {
	var existing int64
	err := tx.QueryRowContext(ctx,
		`SELECT rowid FROM documents WHERE doc_id = ?`, doc.ID,
	).Scan(&existing)
	switch err {
	case nil:
		return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
	case sql.ErrNoRows:
		// continue
	default:
		return fmt.Errorf("checking for existing document %s: %w", doc.ID, err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO documents(doc_id, text) VALUES (?, ?)`,
		doc.ID, doc.Text,
	)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting rowid for doc %s: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO embeddings(rowid, embedding) VALUES (?, ?)`,
		rowID, serializeFloat32(doc.Embedding),
	); err != nil {
		return fmt.Errorf("inserting embedding for doc %s: %w", doc.ID, err)
	}

	return nil
}

// Insert stores a single document. Duplicate IDs fail with ErrDuplicateID.
func (s *Store) Insert(ctx context.Context, doc vector.Document) error {
	return s.BulkInsert(ctx, []vector.Document{doc})
}

// BulkInsert stores documents in one transaction, so a validation failure
// for any document rolls back the whole batch.
func (s *Store) BulkInsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	// Validate dimensions up front; the transaction covers id uniqueness.
	for _, doc := range docs {
		if err := s.validate(doc); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if err := s.insertTx(ctx, tx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("added documents to sqlite-vec",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Query finds the k most similar documents to the given embedding.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", vector.ErrInvalidArgument, k)
	}
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, store has %d",
			vector.ErrDimensionMismatch, len(embedding), s.dimensions)
	}

	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, vector.ErrEmptyStore
	}

	// KNN query via vec0 MATCH, then JOIN back to get doc_id and text.
	// Ordering by (distance, rowid) keeps ties on insertion order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			d.doc_id,
			d.text,
			e.embedding,
			e.distance
		FROM embeddings e
		INNER JOIN documents d ON d.rowid = e.rowid
		WHERE e.embedding MATCH ?
			AND e.k = ?
		ORDER BY e.distance, e.rowid
	`, serializeFloat32(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var docID, text string
		var embBlob []byte
		var distance float64
		if err := rows.Scan(&docID, &text, &embBlob, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		emb, err := deserializeFloat32(embBlob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for doc %s: %w", docID, err)
		}

		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:        docID,
				Text:      text,
				Embedding: emb,
			},
			Score: s.score(distance),
			Rank:  len(results),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	s.logger.Debug("queried sqlite-vec",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// score converts a vec0 distance to a similarity score. Cosine distance is
// 1 - similarity; L2 distance maps through 1/(1+d). Both keep the
// non-increasing score ordering.
func (s *Store) score(distance float64) float32 {
	if s.metric == vector.MetricCosine {
		return float32(1.0 - distance)
	}
	return float32(1.0 / (1.0 + distance))
}

// Get retrieves documents by their IDs.
func (s *Store) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT d.doc_id, d.text, d.rowid
		FROM documents d
		WHERE d.doc_id IN (%s)
		ORDER BY d.rowid
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	// Collect results first so the rows cursor is closed before issuing
	// additional queries (SQLite uses a single connection).
	type docRow struct {
		docID string
		text  string
		rowID int64
	}
	var docRows []docRow

	for rows.Next() {
		var dr docRow
		if err := rows.Scan(&dr.docID, &dr.text, &dr.rowID); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docRows = append(docRows, dr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	rows.Close()

	docs := make([]vector.Document, 0, len(docRows))
	for _, dr := range docRows {
		doc := vector.Document{
			ID:   dr.docID,
			Text: dr.text,
		}

		var embBlob []byte
		err := s.db.QueryRowContext(ctx,
			`SELECT embedding FROM embeddings WHERE rowid = ?`, dr.rowID,
		).Scan(&embBlob)
		if err == nil && len(embBlob) > 0 {
			doc.Embedding, _ = deserializeFloat32(embBlob)
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	inClause := strings.Join(placeholders, ",")

	// vec0 rows must be deleted by rowid, so resolve them first.
	query := fmt.Sprintf(
		`SELECT rowid FROM documents WHERE doc_id IN (%s)`, inClause,
	)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM embeddings WHERE rowid = ?`, rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	deleteQuery := fmt.Sprintf(
		`DELETE FROM documents WHERE doc_id IN (%s)`, inClause,
	)
	if _, err := tx.ExecContext(ctx, deleteQuery, args...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("deleted documents from sqlite-vec",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Clear removes every document and embedding.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases resources held by the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements vector.Store
var _ vector.Store = (*Store)(nil)
