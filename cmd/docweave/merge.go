package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docweave/docweave"
)

var (
	mergeSource string
	mergeBefore string
	mergeAfter  string
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Splice edited tree content back into original source text",
	Long: `Merge an edited document tree into the original source text.

Takes the original source file, the AST JSON parsed from it (with byte
spans), and the edited AST JSON. Produces new source text in which every
unchanged region keeps its original bytes.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeSource, "source", "s", "", "Original source text file")
	mergeCmd.Flags().StringVarP(&mergeBefore, "before", "b", "", "Before document (AST JSON, spans into source)")
	mergeCmd.Flags().StringVarP(&mergeAfter, "after", "a", "", "After document (AST JSON)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output file (default stdout)")
	mergeCmd.MarkFlagRequired("source")
	mergeCmd.MarkFlagRequired("before")
	mergeCmd.MarkFlagRequired("after")
}

func runMerge(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(mergeSource)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	before, err := readDocument(mergeBefore)
	if err != nil {
		return fmt.Errorf("reading before document: %w", err)
	}
	after, err := readDocument(mergeAfter)
	if err != nil {
		return fmt.Errorf("reading after document: %w", err)
	}

	out, err := docweave.Rewrite(src, before, after, docweave.WithSourceName(mergeSource))
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	if mergeOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	if err := os.WriteFile(mergeOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", mergeOutput, len(out))
	}
	return nil
}
