package pgvector_test

import (
	"context"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/vector"
	"github.com/groundedhq/grounded/pkg/vector/pgvector"
)

func TestPgvectorStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pgvector Store Suite")
}

// connStr returns the PostgreSQL connection string from environment or skips
// the test. The target database needs the pgvector extension available.
func connStr() string {
	dsn := os.Getenv("GROUNDED_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("GROUNDED_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Store", func() {
	var (
		store *pgvector.Store
		ctx   context.Context
	)

	doc := func(id string, emb ...float32) vector.Document {
		return vector.Document{ID: id, Text: "text for " + id, Embedding: emb}
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = pgvector.NewStore(ctx, pgvector.Config{
			ConnStr:    connStr(),
			Table:      "documents_test",
			Dimensions: 3,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		// Clean the table before each test for isolation.
		Expect(store.Clear(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	It("implements vector.Store", func() {
		var _ vector.Store = (*pgvector.Store)(nil)
	})

	It("inserts and queries documents", func() {
		Expect(store.BulkInsert(ctx, []vector.Document{
			doc("paris", 0.9, 0.1, 0),
			doc("sky", 0, 0.2, 0.9),
		})).To(Succeed())

		results, err := store.Query(ctx, []float32{0.9, 0.1, 0}, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].ID).To(Equal("paris"))
		Expect(results[0].Rank).To(Equal(0))
	})

	It("rejects duplicate ids and rolls back the batch", func() {
		Expect(store.Insert(ctx, doc("a", 1, 0, 0))).To(Succeed())

		err := store.BulkInsert(ctx, []vector.Document{
			doc("b", 0, 1, 0),
			doc("a", 0, 0, 1),
		})
		Expect(err).To(MatchError(vector.ErrDuplicateID))

		count, _ := store.Count(ctx)
		Expect(count).To(Equal(1))
	})

	It("rejects mismatched dimensionality", func() {
		err := store.Insert(ctx, doc("a", 1, 0))
		Expect(err).To(MatchError(vector.ErrDimensionMismatch))
	})

	It("fails with ErrEmptyStore on an empty table", func() {
		_, err := store.Query(ctx, []float32{1, 0, 0}, 1)
		Expect(err).To(MatchError(vector.ErrEmptyStore))
	})
})
