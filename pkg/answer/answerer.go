// Package answer composes retrieval, prompt assembly, and completion into a
// question-answering pipeline.
package answer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/llm"
	"github.com/groundedhq/grounded/pkg/prompt"
	"github.com/groundedhq/grounded/pkg/retrieve"
	"github.com/groundedhq/grounded/pkg/vector"
)

// ErrCollaboratorTimeout is returned when the embedder, store, or language
// model does not respond within the caller's deadline.
var ErrCollaboratorTimeout = errors.New("collaborator timed out")

// Config holds configuration for the answerer.
type Config struct {
	// TopK is how many documents to retrieve per question. Defaults to
	// retrieve.DefaultTopK when zero.
	TopK int

	// AllowEmptyStore answers from an empty store with no context rather
	// than failing. Off by default so misconfigured pipelines fail loud.
	AllowEmptyStore bool
}

// Result is a grounded answer together with the evidence behind it.
type Result struct {
	// Answer is the model's response text.
	Answer string

	// Prompt is the fully assembled prompt sent to the model.
	Prompt string

	// Sources are the retrieved documents the answer was grounded on,
	// in rank order.
	Sources []vector.QueryResult
}

// Answerer answers questions against an indexed corpus.
type Answerer struct {
	retriever *retrieve.Retriever
	template  *prompt.Template
	completer llm.Completer
	config    Config
	logger    *zap.Logger
}

// New creates an answerer from its collaborators. A nil template selects
// prompt.Default.
func New(retriever *retrieve.Retriever, template *prompt.Template, completer llm.Completer, config Config, logger *zap.Logger) *Answerer {
	if template == nil {
		template = prompt.Default()
	}
	if config.TopK < 1 {
		config.TopK = retrieve.DefaultTopK
	}
	return &Answerer{
		retriever: retriever,
		template:  template,
		completer: completer,
		config:    config,
		logger:    logger,
	}
}

// Ask retrieves context for the question, assembles the prompt, and returns
// the model's answer. Any collaborator failure aborts the run; there are no
// partial answers.
func (a *Answerer) Ask(ctx context.Context, question string) (*Result, error) {
	return a.ask(ctx, question, a.config.TopK, nil)
}

// AskK is Ask with an explicit retrieval count.
func (a *Answerer) AskK(ctx context.Context, question string, k int) (*Result, error) {
	return a.ask(ctx, question, k, nil)
}

// AskStream is Ask with incremental delivery: onDelta receives answer
// fragments as the model produces them. Falls back to non-streaming when
// the completer doesn't support it.
func (a *Answerer) AskStream(ctx context.Context, question string, onDelta func(string)) (*Result, error) {
	return a.ask(ctx, question, a.config.TopK, onDelta)
}

func (a *Answerer) ask(ctx context.Context, question string, k int, onDelta func(string)) (*Result, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", vector.ErrInvalidArgument)
	}

	sources, err := a.retriever.RetrieveK(ctx, question, k)
	if err != nil {
		if a.config.AllowEmptyStore && errors.Is(err, vector.ErrEmptyStore) {
			sources = nil
		} else {
			return nil, timeoutErr(fmt.Errorf("retrieving context: %w", err))
		}
	}

	contextDocs := make([]string, 0, len(sources))
	for _, s := range sources {
		contextDocs = append(contextDocs, s.Text)
	}

	assembled := a.template.Render(contextDocs, question)

	answer, err := a.complete(ctx, assembled, onDelta)
	if err != nil {
		if !errors.Is(err, llm.ErrCompletion) {
			err = fmt.Errorf("%w: %v", llm.ErrCompletion, err)
		}
		return nil, timeoutErr(fmt.Errorf("completing answer: %w", err))
	}

	a.logger.Debug("answered question",
		zap.Int("sources", len(sources)),
		zap.Int("answer_len", len(answer)),
	)

	return &Result{
		Answer:  answer,
		Prompt:  assembled,
		Sources: sources,
	}, nil
}

func (a *Answerer) complete(ctx context.Context, assembled string, onDelta func(string)) (string, error) {
	if onDelta != nil {
		if sc, ok := a.completer.(llm.StreamCompleter); ok {
			return sc.CompleteStream(ctx, assembled, onDelta)
		}
	}
	return a.completer.Complete(ctx, assembled)
}

// timeoutErr maps context deadline expiry onto the package sentinel so
// callers can tell a slow collaborator from a broken one.
func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrCollaboratorTimeout, err)
	}
	return err
}
