package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundedhq/grounded/pkg/embeddings/openai"
	"github.com/groundedhq/grounded/pkg/vector"
)

func TestOpenAIEmbedder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAI Embedder Suite")
}

var _ = Describe("Embedder", func() {
	var (
		server *httptest.Server
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	It("posts to /v1/embeddings with a bearer token", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/embeddings"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))

			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"embedding": []float32{0.5, 0.6}},
				},
			})
		}))

		embedder, err := openai.NewEmbedder(openai.EmbedderConfig{
			BaseURL: server.URL,
			APIKey:  "test-key",
		})
		Expect(err).NotTo(HaveOccurred())
		defer embedder.Close()

		emb, err := embedder.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(emb).To(Equal([]float32{0.5, 0.6}))
	})

	It("wraps an API error in ErrEmbedding", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))

		embedder, err := openai.NewEmbedder(openai.EmbedderConfig{
			BaseURL: server.URL,
			APIKey:  "test-key",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, "hello")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})
})
