package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/answer"
	"github.com/groundedhq/grounded/pkg/llm"
	"github.com/groundedhq/grounded/pkg/vector"
)

// SearchResult is one ranked document in a search response.
type SearchResult struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse is the body of a successful /v1/search reply.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// AskRequest is the body of a /v1/ask request.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskResponse is the body of a successful /v1/ask reply.
type AskResponse struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources"`
}

// StatsResponse reports store statistics.
type StatsResponse struct {
	Documents int `json:"documents"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStats returns statistics about the indexed corpus.
func (s *Server) handleStats(c *fiber.Ctx) error {
	count, err := s.store.Count(c.Context())
	if err != nil {
		s.logger.Error("counting documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count documents"})
	}

	return c.JSON(StatsResponse{Documents: count})
}

// handleSearch handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK, ok := parseTopK(c.Query("top_k"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "top_k must be a positive integer",
		})
	}

	var results []vector.QueryResult
	var err error
	if topK > 0 {
		results, err = s.retriever.RetrieveK(c.Context(), query, topK)
	} else {
		results, err = s.retriever.Retrieve(c.Context(), query)
	}
	if err != nil {
		return s.errorReply(c, err)
	}

	return c.JSON(SearchResponse{
		Query:   query,
		Results: searchResults(results),
	})
}

// handleAsk handles POST /v1/ask requests.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "question is required",
		})
	}
	if req.TopK < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "top_k must be a positive integer",
		})
	}

	ctx := c.Context()
	var result *answer.Result
	var err error
	if req.TopK > 0 {
		result, err = s.answerer.AskK(ctx, req.Question, req.TopK)
	} else {
		result, err = s.answerer.Ask(ctx, req.Question)
	}
	if err != nil {
		return s.errorReply(c, err)
	}

	return c.JSON(AskResponse{
		Question: req.Question,
		Answer:   result.Answer,
		Sources:  searchResults(result.Sources),
	})
}

// errorReply maps pipeline errors onto HTTP statuses.
func (s *Server) errorReply(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, vector.ErrInvalidArgument):
		status = fiber.StatusBadRequest
	case errors.Is(err, vector.ErrEmptyStore):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, answer.ErrCollaboratorTimeout):
		status = fiber.StatusGatewayTimeout
	case errors.Is(err, vector.ErrEmbedding), errors.Is(err, llm.ErrCompletion):
		status = fiber.StatusBadGateway
	}

	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.Any("request_id", c.Locals("request_id")),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func searchResults(results []vector.QueryResult) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			ID:    r.ID,
			Text:  r.Text,
			Score: r.Score,
			Rank:  r.Rank,
		})
	}
	return out
}

// parseTopK parses an optional top_k query parameter. Zero means unset.
func parseTopK(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
