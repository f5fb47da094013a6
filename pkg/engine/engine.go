// Package engine assembles the retrieval pipeline from configuration.
//
// Commands and servers share one wiring path: config in, a connected store,
// embedder, completer, indexer, retriever, and answerer out.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/answer"
	"github.com/groundedhq/grounded/pkg/config"
	"github.com/groundedhq/grounded/pkg/embeddings"
	embeddingutils "github.com/groundedhq/grounded/pkg/embeddings/utils"
	"github.com/groundedhq/grounded/pkg/index"
	"github.com/groundedhq/grounded/pkg/llm"
	llmutils "github.com/groundedhq/grounded/pkg/llm/utils"
	"github.com/groundedhq/grounded/pkg/retrieve"
	"github.com/groundedhq/grounded/pkg/vector"
	vectorutils "github.com/groundedhq/grounded/pkg/vector/utils"
)

// Engine bundles the pipeline components built from one Config.
type Engine struct {
	Store     vector.Store
	Embedder  embeddings.Embedder
	Completer llm.Completer
	Indexer   *index.Indexer
	Retriever *retrieve.Retriever
	Answerer  *answer.Answerer

	logger *zap.Logger
}

// Options tweak assembly beyond what the config file carries.
type Options struct {
	// SkipCompleter leaves Completer and Answerer nil. Used by commands
	// that only index or search.
	SkipCompleter bool

	// AllowEmptyStore is passed through to the answerer.
	AllowEmptyStore bool
}

// New builds an engine from configuration.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *zap.Logger) (*Engine, error) {
	store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
		ProviderType: cfg.Storage.Provider,
		Target:       cfg.Storage.Target,
		Metric:       cfg.Storage.Metric,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	policy, err := index.ParseFailurePolicy(cfg.Index.Policy)
	if err != nil {
		store.Close()
		return nil, err
	}

	e := &Engine{
		Store:    store,
		Embedder: embedder,
		Indexer: index.New(store, embedder, index.Config{
			Policy:    policy,
			PreDelete: cfg.Index.PreDelete,
		}, logger),
		Retriever: retrieve.New(store, embedder, retrieve.Config{
			TopK: cfg.Retrieval.TopK,
		}, logger),
		logger: logger,
	}

	if opts.SkipCompleter {
		return e, nil
	}

	completer, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{
		ProviderType: cfg.LLM.Provider,
		TargetURL:    cfg.LLM.Target,
		Model:        cfg.LLM.Model,
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("creating completer: %w", err)
	}

	e.Completer = completer
	e.Answerer = answer.New(e.Retriever, nil, completer, answer.Config{
		TopK:            cfg.Retrieval.TopK,
		AllowEmptyStore: opts.AllowEmptyStore,
	}, logger)

	return e, nil
}

// Close releases every held collaborator. Safe to call on a partially
// built engine.
func (e *Engine) Close() {
	if e.Completer != nil {
		if err := e.Completer.Close(); err != nil {
			e.logger.Warn("closing completer", zap.Error(err))
		}
	}
	if e.Embedder != nil {
		if err := e.Embedder.Close(); err != nil {
			e.logger.Warn("closing embedder", zap.Error(err))
		}
	}
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			e.logger.Warn("closing store", zap.Error(err))
		}
	}
}
