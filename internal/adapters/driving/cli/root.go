// Package cli defines the docuchat command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docuchat/docuchat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "Retrieval-augmented chat over your documents",
	Long: `Docuchat indexes uploaded documents into a vector store and answers
chat questions with context retrieved from them.

Run "docuchat serve" to start the HTTP server.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "path to a TOML config file")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
