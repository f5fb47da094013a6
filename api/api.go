package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/answer"
	"github.com/groundedhq/grounded/pkg/retrieve"
	"github.com/groundedhq/grounded/pkg/vector"
)

// requestIDHeader carries the per-request id, generated when absent.
const requestIDHeader = "X-Request-Id"

// ErrorResponse is the JSON body for all error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the API server for querying the grounded engine
type Server struct {
	config    Config
	store     vector.Store
	retriever *retrieve.Retriever
	answerer  *answer.Answerer
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server.
// The store, retriever, and answerer are injected to allow sharing with
// other components (e.g., the watcher when serving with --watch).
func NewServer(config Config, store vector.Store, retriever *retrieve.Retriever, answerer *answer.Answerer, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		store:     store,
		retriever: retriever,
		answerer:  answerer,
		logger:    logger,
		app:       app,
	}

	app.Use(s.requestID)

	app.Get("/ping", s.handlePing)
	app.Get("/v1/stats", s.handleStats)
	app.Get("/v1/search", s.handleSearch)
	app.Post("/v1/ask", s.handleAsk)

	return s
}

// requestID assigns every request an id and echoes it in the response.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Locals("request_id", id)
	return c.Next()
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
