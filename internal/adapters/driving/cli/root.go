// Package cli implements the veridoc command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/veridoc-cli/internal/logger"
)

var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "veridoc",
	Short: "Grounded question answering over local documents",
	Long: `Veridoc indexes local documents into a vector index and answers
questions strictly from the indexed content. Every answer is graded
against the retrieved context, and the grounding verdict is reported
alongside the answer.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.veridoc)")
}

// Execute runs the root command. The version string is injected by the
// main package at build time.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
