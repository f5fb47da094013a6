// Package configcmder provides the config command for managing persistent
// grounded configuration stored in the .grounded/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent grounded configuration.

Configuration is stored as config.toml in the .grounded/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.target, storage.metric,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model,
  retrieval.top_k, index.policy, index.pre_delete,
  api.listen, client.api_target

Use subcommands to get, set, or list configuration values:
  grounded config set <key> <value>    Set a configuration value
  grounded config get <key>            Get a configuration value
  grounded config list                 List all configuration values

Examples:
  grounded config set storage.provider sqlite-vec
  grounded config set embedding.model nomic-embed-text
  grounded config get llm.model
  grounded config list`

const configShortDesc string = "Manage persistent grounded configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
