package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "docweave",
	Short: "docweave - format-preserving incremental document rewriter",
	Long: `docweave reconciles two versions of a document tree and splices the
changes back into the original source text. Unchanged regions keep their
bytes verbatim: comments, blank lines, and formatting quirks survive edits
made through the tree.

Documents are exchanged as AST JSON.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
