// Package indexcmder provides the index command for loading a corpus into
// the vector store.
package indexcmder

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/config"
	"github.com/groundedhq/grounded/pkg/engine"
	"github.com/groundedhq/grounded/pkg/index"
	"github.com/groundedhq/grounded/pkg/logger"
	"github.com/groundedhq/grounded/pkg/utils"
)

type indexCommander struct {
	dir       string
	policy    string
	preDelete bool

	storageProvider string
	storageTarget   string
	storageMetric   string
	embeddingProv   string
	embeddingTgt    string
	embeddingModel  string
	embeddingDims   uint

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const indexLongDesc string = `Index a directory of documents into the vector store.

Walks the directory tree, loads every text and markdown file, splits the
content into paragraph chunks, embeds each chunk, and stores the result.
Document ids are derived from content, so re-indexing the same corpus with
--pre-delete is idempotent.

The failure policy controls what happens when a document cannot be embedded:
  fail-fast         Abort the run with nothing inserted (default)
  skip-and-report   Skip the document and report it at the end

Examples:
  grounded index ./docs
  grounded index ./docs --pre-delete
  grounded index ./docs --policy skip-and-report
  grounded index ./docs --storage-provider sqlite-vec --storage-target ./vectors.db`

const indexShortDesc string = "Index a directory of documents"

var indexFlags = []string{
	config.FlagStorageProvider,
	config.FlagStorageTarget,
	config.FlagStorageMetric,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagIndexPolicy,
	config.FlagIndexPreDelete,
}

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, indexFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.dir = args[0]

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
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexPolicy, &cmder.policy)
	config.AddBoolFlag(cmd, config.Flags, config.FlagIndexPreDelete, &cmder.preDelete)

	return cmd
}

func (c *indexCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	// Human-facing progress goes through charmbracelet/log; structured
	// pipeline logs stay on zap.
	progress := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
	})

	e, err := engine.New(ctx, c.cfg, engine.Options{SkipCompleter: true}, c.logger)
	if err != nil {
		return err
	}
	defer e.Close()

	progress.Info("loading corpus", "dir", c.dir)

	docs, err := index.LoadDir(c.dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		progress.Warn("no loadable documents found", "dir", c.dir)
		return nil
	}

	progress.Info("indexing documents",
		"documents", len(docs),
		"provider", c.cfg.Storage.Provider,
		"model", c.cfg.Embedding.Model,
	)

	report, err := e.Indexer.Index(ctx, docs)
	if err != nil {
		return err
	}

	progress.Info("indexing complete", "indexed", report.Indexed, "skipped", len(report.Skipped))

	for _, failure := range report.Skipped {
		progress.Warn("skipped document",
			"id", failure.ID,
			"error", utils.Truncate(failure.Err.Error(), 120),
		)
	}

	return nil
}
