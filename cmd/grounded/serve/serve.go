// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/api"
	"github.com/groundedhq/grounded/pkg/config"
	"github.com/groundedhq/grounded/pkg/engine"
	"github.com/groundedhq/grounded/pkg/index"
	"github.com/groundedhq/grounded/pkg/logger"
)

type ServeCommander struct {
	listen   string
	watchDir string

	storageProvider string
	storageTarget   string
	storageMetric   string
	embeddingProv   string
	embeddingTgt    string
	embeddingModel  string
	embeddingDims   uint
	llmProvider     string
	llmTarget       string
	llmModel        string

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the grounded API server.

Serves retrieval and question answering over HTTP:
  GET  /ping         Health check
  GET  /v1/stats     Indexed document count
  GET  /v1/search    Semantic search over the corpus
  POST /v1/ask       Grounded question answering

With --watch, the server also watches a corpus directory and re-indexes it
whenever files change, so the store always mirrors the directory contents.

Examples:
  grounded serve
  grounded serve --api-listen :9000
  grounded serve --watch ./docs`

const serveShortDesc string = "Run the grounded API server"

var serveFlags = []string{
	config.FlagStorageProvider,
	config.FlagStorageTarget,
	config.FlagStorageMetric,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProvider,
	config.FlagLLMTarget,
	config.FlagLLMModel,
	config.FlagAPIListen,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageTarget, &cmder.storageTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageMetric, &cmder.storageMetric)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTarget, &cmder.llmTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	cmd.Flags().StringVarP(&cmder.watchDir, "watch", "w", "", "Corpus directory to watch and re-index on change")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	e, err := engine.New(ctx, c.cfg, engine.Options{}, c.logger)
	if err != nil {
		return err
	}
	defer e.Close()

	apiConfig := api.Config{
		ListenAddr: c.cfg.API.Listen,
	}
	server := api.NewServer(apiConfig, e.Store, e.Retriever, e.Answerer, c.logger)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	if c.watchDir != "" {
		watcher := index.NewWatcher(e.Indexer, c.watchDir, c.logger)

		c.logger.Info("watching corpus directory",
			zap.String("dir", c.watchDir),
		)

		go func() {
			if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
				errChan <- fmt.Errorf("watcher error: %w", err)
			}
		}()
	}

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancelWatch()
		return server.Shutdown()
	}
}
