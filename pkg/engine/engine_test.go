package engine_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/config"
	"github.com/groundedhq/grounded/pkg/engine"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

var _ = Describe("New", func() {
	var (
		ctx    context.Context
		cfg    *config.Config
		logger *zap.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.NewDefaultConfig()
		logger = zap.NewNop()
	})

	It("builds the full pipeline from defaults", func() {
		e, err := engine.New(ctx, cfg, engine.Options{}, logger)
		Expect(err).NotTo(HaveOccurred())
		defer e.Close()

		Expect(e.Store).NotTo(BeNil())
		Expect(e.Embedder).NotTo(BeNil())
		Expect(e.Completer).NotTo(BeNil())
		Expect(e.Indexer).NotTo(BeNil())
		Expect(e.Retriever).NotTo(BeNil())
		Expect(e.Answerer).NotTo(BeNil())
	})

	It("skips the completer when asked", func() {
		e, err := engine.New(ctx, cfg, engine.Options{SkipCompleter: true}, logger)
		Expect(err).NotTo(HaveOccurred())
		defer e.Close()

		Expect(e.Completer).To(BeNil())
		Expect(e.Answerer).To(BeNil())
		Expect(e.Retriever).NotTo(BeNil())
	})

	It("rejects an unknown storage provider", func() {
		cfg.Storage.Provider = "etched-stone"

		_, err := engine.New(ctx, cfg, engine.Options{}, logger)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown embedding provider", func() {
		cfg.Embedding.Provider = "telepathy"

		_, err := engine.New(ctx, cfg, engine.Options{}, logger)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown indexing policy", func() {
		cfg.Index.Policy = "improvise"

		_, err := engine.New(ctx, cfg, engine.Options{}, logger)
		Expect(err).To(HaveOccurred())
	})
})
