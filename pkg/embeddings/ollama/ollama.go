// Package ollama embeds text through a local Ollama server's /api/embed
// endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/groundedhq/grounded/pkg/embeddings"
	"github.com/groundedhq/grounded/pkg/vector"
)

const (
	// DefaultEmbeddingModel is the embedding model used when none is
	// configured.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultBaseURL points at a locally running Ollama server.
	DefaultBaseURL = "http://localhost:11434"

	requestTimeout = 120 * time.Second
)

// EmbedderConfig configures the Ollama embedder. Zero-value fields fall back
// to the package defaults.
type EmbedderConfig struct {
	// BaseURL is the Ollama server URL, e.g. "http://localhost:11434".
	BaseURL string

	// Model names the embedding model, e.g. "nomic-embed-text".
	Model string
}

// Embedder calls Ollama's embedding endpoint. All failures are wrapped in
// vector.ErrEmbedding.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ embeddings.Embedder = (*Embedder)(nil)

func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", vector.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", vector.ErrEmbedding, resp.StatusCode, string(body))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrEmbedding, err)
	}
	if len(parsed.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}

	return parsed.Embeddings[0], nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (e *Embedder) Close() error {
	return nil
}
