// Package groundedcmder
package groundedcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/groundedhq/grounded/cmd/grounded/ask"
	configcmder "github.com/groundedhq/grounded/cmd/grounded/config"
	indexcmder "github.com/groundedhq/grounded/cmd/grounded/index"
	searchcmder "github.com/groundedhq/grounded/cmd/grounded/search"
	servecmder "github.com/groundedhq/grounded/cmd/grounded/serve"
	versioncmder "github.com/groundedhq/grounded/cmd/version"
)

const groundedLongDesc string = `Grounded is retrieval-augmented question answering over your documents.

Index a corpus, then search or ask against it:
  grounded index ./docs      Embed and store a directory of documents
  grounded search "query"    Retrieve the most relevant documents
  grounded ask "question"    Answer a question grounded in the corpus
  grounded serve             Run the HTTP API server`

const groundedShortDesc string = "Grounded - Retrieval-Augmented QA"

func NewGroundedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grounded",
		Short: groundedShortDesc,
		Long:  groundedLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Path to the .grounded config directory")

	// Add subcommands
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
