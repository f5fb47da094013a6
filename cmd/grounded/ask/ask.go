// Package askcmder provides the ask command for grounded question answering.
package askcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/groundedhq/grounded/pkg/answer"
	"github.com/groundedhq/grounded/pkg/cliui"
	"github.com/groundedhq/grounded/pkg/config"
	"github.com/groundedhq/grounded/pkg/engine"
	"github.com/groundedhq/grounded/pkg/logger"
)

var (
	sourceIDStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type askCommander struct {
	question    string
	topK        int
	showSources bool
	plain       bool
	allowEmpty  bool

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

const askLongDesc string = `Answer a question grounded in the indexed corpus.

Retrieves the most relevant documents for the question, assembles them into
a prompt, and asks the configured language model. The answer only draws on
the retrieved context; when the context doesn't contain the answer, the
model is instructed to say it doesn't know.

When stdout is a terminal the answer is rendered as markdown; otherwise the
raw model output is streamed as it arrives.

Examples:
  grounded ask "how do I configure logging?"
  grounded ask "what metrics are exported?" --top-k 8 --show-sources
  grounded ask "summarize the release notes" --llm-model llama3.2`

const askShortDesc string = "Answer a question grounded in the corpus"

var askFlags = []string{
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
	config.FlagTopK,
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, askFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = args[0]

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
	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &cmder.topK)
	cmd.Flags().BoolVar(&cmder.showSources, "show-sources", false, "Print the retrieved documents after the answer")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Disable markdown rendering")
	cmd.Flags().BoolVar(&cmder.allowEmpty, "allow-empty", false, "Answer without context when the store is empty")

	return cmd
}

func (c *askCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	e, err := engine.New(ctx, c.cfg, engine.Options{AllowEmptyStore: c.allowEmpty}, c.logger)
	if err != nil {
		return err
	}
	defer e.Close()

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && !c.plain

	var result *answer.Result
	if interactive {
		err = cliui.Step(os.Stderr, "thinking", func() error {
			result, err = e.Answerer.Ask(ctx, c.question)
			return err
		})
		if err != nil {
			return err
		}

		rendered, renderErr := cliui.RenderMarkdown(result.Answer)
		if renderErr != nil {
			rendered = result.Answer + "\n"
		}
		fmt.Print(rendered)
	} else {
		result, err = e.Answerer.AskStream(ctx, c.question, func(delta string) {
			fmt.Print(delta)
		})
		if err != nil {
			return err
		}
		fmt.Println()
	}

	if c.showSources {
		c.printSources(result)
	}

	return nil
}

func (c *askCommander) printSources(result *answer.Result) {
	if len(result.Sources) == 0 {
		fmt.Printf("\n%s\n", dimStyle.Render("No sources (answered without context)."))
		return
	}

	fmt.Printf("\n%s\n", dimStyle.Render("Sources:"))
	for _, s := range result.Sources {
		fmt.Printf("  %s %s\n",
			sourceIDStyle.Render(s.ID),
			scoreStyle.Render(fmt.Sprintf("score: %.4f", s.Score)),
		)
	}
}
