package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/glcore/internal/buildinfo"
	"github.com/cleared-dev/glcore/internal/clock"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(clock.SystemClock{})
}

func newRootCommand(clk clock.Clock) *cobra.Command {
	opts := &rootOptions{clock: clk}

	rootCmd := &cobra.Command{
		Use:     "glcore",
		Short:   "General ledger posting validation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default <repo>/glcore.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCOACommand(opts))
	rootCmd.AddCommand(newJournalCommand(opts))
	rootCmd.AddCommand(newPaymentCommand(opts))

	return rootCmd
}
