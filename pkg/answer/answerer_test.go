package answer_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/answer"
	"github.com/groundedhq/grounded/pkg/llm"
	"github.com/groundedhq/grounded/pkg/retrieve"
	testutils "github.com/groundedhq/grounded/pkg/utils/test"
	"github.com/groundedhq/grounded/pkg/vector"
	"github.com/groundedhq/grounded/pkg/vector/memory"
)

func TestAnswer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Answer Suite")
}

var _ = Describe("Answerer", func() {
	var (
		ctx       context.Context
		store     *memory.Store
		embedder  *testutils.MockEmbedder
		completer *testutils.MockCompleter
		retriever *retrieve.Retriever
		logger    *zap.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.NewStore(memory.Config{})
		embedder = testutils.NewMockEmbedder()
		completer = testutils.NewMockCompleter("grounded answer")
		logger = zap.NewNop()

		embedder.Embeddings["what about cats?"] = []float32{1, 0, 0}

		Expect(store.BulkInsert(ctx, []vector.Document{
			{ID: "cats", Text: "cats sleep sixteen hours a day", Embedding: []float32{1, 0, 0}},
			{ID: "dogs", Text: "dogs are pack animals", Embedding: []float32{0, 1, 0}},
		})).To(Succeed())

		retriever = retrieve.New(store, embedder, retrieve.Config{}, logger)
	})

	It("returns the model answer with its sources", func() {
		a := answer.New(retriever, nil, completer, answer.Config{}, logger)

		result, err := a.Ask(ctx, "what about cats?")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Answer).To(Equal("grounded answer"))
		Expect(result.Sources).NotTo(BeEmpty())
		Expect(result.Sources[0].ID).To(Equal("cats"))
	})

	It("sends a prompt containing the retrieved context and the question", func() {
		a := answer.New(retriever, nil, completer, answer.Config{}, logger)

		result, err := a.Ask(ctx, "what about cats?")
		Expect(err).NotTo(HaveOccurred())
		Expect(completer.Prompts).To(HaveLen(1))
		Expect(completer.Prompts[0]).To(Equal(result.Prompt))
		Expect(result.Prompt).To(ContainSubstring("cats sleep sixteen hours a day"))
		Expect(result.Prompt).To(ContainSubstring("what about cats?"))
	})

	It("respects the configured top-k", func() {
		a := answer.New(retriever, nil, completer, answer.Config{TopK: 1}, logger)

		result, err := a.Ask(ctx, "what about cats?")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Sources).To(HaveLen(1))
	})

	It("rejects an empty question", func() {
		a := answer.New(retriever, nil, completer, answer.Config{}, logger)

		_, err := a.Ask(ctx, "")
		Expect(err).To(MatchError(vector.ErrInvalidArgument))
	})

	Context("when the store is empty", func() {
		BeforeEach(func() {
			Expect(store.Clear(ctx)).To(Succeed())
		})

		It("fails by default", func() {
			a := answer.New(retriever, nil, completer, answer.Config{}, logger)

			_, err := a.Ask(ctx, "what about cats?")
			Expect(err).To(MatchError(vector.ErrEmptyStore))
			Expect(completer.Prompts).To(BeEmpty())
		})

		It("answers without context when allowed", func() {
			a := answer.New(retriever, nil, completer, answer.Config{AllowEmptyStore: true}, logger)

			result, err := a.Ask(ctx, "what about cats?")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Sources).To(BeEmpty())
			Expect(result.Prompt).To(ContainSubstring("what about cats?"))
		})
	})

	It("propagates embedding failures without calling the model", func() {
		embedder.FailOn = "what about cats?"
		a := answer.New(retriever, nil, completer, answer.Config{}, logger)

		_, err := a.Ask(ctx, "what about cats?")
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(completer.Prompts).To(BeEmpty())
	})

	It("propagates completion failures with no partial answer", func() {
		completer.Err = fmt.Errorf("%w: model unavailable", llm.ErrCompletion)
		a := answer.New(retriever, nil, completer, answer.Config{}, logger)

		result, err := a.Ask(ctx, "what about cats?")
		Expect(err).To(MatchError(llm.ErrCompletion))
		Expect(result).To(BeNil())
	})

	It("maps deadline expiry onto ErrCollaboratorTimeout", func() {
		completer.Err = fmt.Errorf("talking to model: %w", context.DeadlineExceeded)
		a := answer.New(retriever, nil, completer, answer.Config{}, logger)

		_, err := a.Ask(ctx, "what about cats?")
		Expect(err).To(MatchError(answer.ErrCollaboratorTimeout))
	})

	It("grounds a capital-city question in the matching document", func() {
		facts := memory.NewStore(memory.Config{})
		geo := testutils.NewMockEmbedder()
		geo.Embeddings["What is the capital of France?"] = []float32{1, 0, 0}

		Expect(facts.BulkInsert(ctx, []vector.Document{
			{ID: "fr", Text: "Paris is the capital of France.", Embedding: []float32{0.9, 0.1, 0}},
			{ID: "de", Text: "Berlin is the capital of Germany.", Embedding: []float32{0, 1, 0}},
			{ID: "jp", Text: "Tokyo is the capital of Japan.", Embedding: []float32{0, 0, 1}},
		})).To(Succeed())

		model := testutils.NewMockCompleter("Paris")
		a := answer.New(retrieve.New(facts, geo, retrieve.Config{TopK: 2}, logger), nil, model, answer.Config{}, logger)

		result, err := a.Ask(ctx, "What is the capital of France?")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Answer).To(Equal("Paris"))
		Expect(result.Sources[0].ID).To(Equal("fr"))
		Expect(result.Prompt).To(ContainSubstring("Paris is the capital of France."))
	})

	Describe("AskStream", func() {
		It("delivers deltas and the full answer", func() {
			streamer := &testutils.MockStreamCompleter{Chunks: []string{"grounded ", "answer"}}
			a := answer.New(retriever, nil, streamer, answer.Config{}, logger)

			var got []string
			result, err := a.AskStream(ctx, "what about cats?", func(delta string) {
				got = append(got, delta)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Answer).To(Equal("grounded answer"))
			Expect(got).To(Equal([]string{"grounded ", "answer"}))
		})

		It("falls back to a single completion when streaming is unsupported", func() {
			a := answer.New(retriever, nil, completer, answer.Config{}, logger)

			result, err := a.AskStream(ctx, "what about cats?", func(string) {})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Answer).To(Equal("grounded answer"))
		})
	})
})
