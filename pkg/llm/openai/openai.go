// Package openai implements pkg/llm's Completer client for OpenAI's chat
// completions API, including SSE streaming.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/groundedhq/grounded/pkg/llm"
	"github.com/groundedhq/grounded/pkg/sse"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"

	// apiKeyEnv is the environment variable the API key is read from when
	// not provided in the config.
	apiKeyEnv = "OPENAI_API_KEY"

	// streamDone is the sentinel data payload ending an OpenAI SSE stream.
	streamDone = "[DONE]"
)

// Client wraps OpenAI's chat completions API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the OpenAI chat client.
type Config struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty; set it
	// to point at an OpenAI-compatible server.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

// chatResponse is the non-streaming chat completions response.
type chatResponse struct {
	Choices []struct {
		Message      llm.Message `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// streamChunk is a single streaming chat completions chunk.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient creates a chat client for OpenAI's chat completions API.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// post sends a chat completions request and returns the raw response body
// reader. The caller closes it.
func (c *Client) post(ctx context.Context, reqBody chatRequest) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", llm.ErrCompletion, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", llm.ErrCompletion, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", llm.ErrCompletion, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: openai returned status %d: %s", llm.ErrCompletion, resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// Complete sends the prompt as a single user message and returns the
// assistant's response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := c.post(ctx, chatRequest{
		Model:    c.model,
		Messages: []llm.Message{llm.NewUserMessage(prompt)},
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", llm.ErrCompletion, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", llm.ErrCompletion)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// CompleteStream streams the completion, invoking onDelta for each text
// fragment, and returns the full concatenated text.
func (c *Client) CompleteStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	body, err := c.post(ctx, chatRequest{
		Model:    c.model,
		Messages: []llm.Message{llm.NewUserMessage(prompt)},
		Stream:   true,
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var full strings.Builder
	reader := sse.NewReader(body)
	for {
		ev, err := reader.Next()
		if err != nil {
			return "", fmt.Errorf("%w: reading stream: %v", llm.ErrCompletion, err)
		}
		if ev == nil || ev.Data == streamDone {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return "", fmt.Errorf("%w: decoding stream chunk: %v", llm.ErrCompletion, err)
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return full.String(), nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

// Ensure Client implements llm.StreamCompleter
var _ llm.StreamCompleter = (*Client)(nil)
