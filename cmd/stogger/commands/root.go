package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stogger",
	Short: "Stogger - news headline sentiment for stock tickers",
	Long: `Stogger Unified CLI

Scrapes the news table of a ticker's quote page, scores every headline
with a lexicon scorer and an optional neural classifier, and aggregates
the scores over a time window.

Usage:
  go run ./cmd/stogger [command]

Examples:
  go run ./cmd/stogger analyze --ticker AMZN --hours 24
  go run ./cmd/stogger api
  go run ./cmd/stogger scheduler start
  go run ./cmd/stogger test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
