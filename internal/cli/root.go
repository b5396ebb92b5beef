package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/entrypoint"
)

// BuildInfo is set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
}

// NewRootCommand creates the storefront CLI. Without a subcommand it serves
// the HTTP API.
func NewRootCommand(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Book storefront state service",
		Long: `Storefront keeps a book shop's session, per-user cart and favorites,
currency preference and language behind a JSON HTTP API.

Configuration is read from the environment (PORT, DATABASE_PATH, KV_BACKEND,
CURRENCY_API_URL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrypoint.Run(config.NewConfig(), info.Version)
			return nil
		},
	}

	cmd.AddCommand(NewServeCommand(info))
	cmd.AddCommand(NewRatesCommand())
	cmd.AddCommand(NewVersionCommand(info))

	return cmd
}

// NewServeCommand creates the serve command.
func NewServeCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrypoint.Run(config.NewConfig(), info.Version)
			return nil
		},
	}
}
