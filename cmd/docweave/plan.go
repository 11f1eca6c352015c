package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docweave/docweave/pkg/ast"
	"github.com/docweave/docweave/pkg/reconcile"
)

var (
	planBefore string
	planAfter  string
	planFormat string
	planPretty bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a reconciliation plan between two document trees",
	Long: `Compute the reconciliation plan between a before and an after document,
both given as AST JSON files.

The plan records, for each block of the result, whether the original
block is kept, the edited block is taken, or the engine recurses into a
changed container. Output is the raw plan as JSON or a colored summary
with the preservation rate.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planBefore, "before", "b", "", "Before document (AST JSON)")
	planCmd.Flags().StringVarP(&planAfter, "after", "a", "", "After document (AST JSON)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "json", "Output format: json or summary")
	planCmd.Flags().BoolVar(&planPretty, "pretty", false, "Pretty-print JSON output")
	planCmd.MarkFlagRequired("before")
	planCmd.MarkFlagRequired("after")
}

// planReport is the JSON output shape of the plan command.
type planReport struct {
	BeforeFile string          `json:"before_file"`
	AfterFile  string          `json:"after_file"`
	Plan       *reconcile.Plan `json:"plan"`
	Summary    planSummary     `json:"summary"`
}

type planSummary struct {
	TotalBlocks      int     `json:"total_blocks_in_result"`
	BlocksKept       int     `json:"blocks_kept_from_before"`
	BlocksReplaced   int     `json:"blocks_used_from_after"`
	BlocksRecursed   int     `json:"blocks_with_recursion"`
	PreservationRate float64 `json:"preservation_rate"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	before, err := readDocument(planBefore)
	if err != nil {
		return fmt.Errorf("reading before document: %w", err)
	}
	after, err := readDocument(planAfter)
	if err != nil {
		return fmt.Errorf("reading after document: %w", err)
	}

	plan := reconcile.Compute(before, after)
	summary := summarize(plan)

	switch planFormat {
	case "json":
		report := planReport{
			BeforeFile: planBefore,
			AfterFile:  planAfter,
			Plan:       plan,
			Summary:    summary,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		if planPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(report)
	case "summary":
		printSummary(cmd, plan, summary)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json or summary)", planFormat)
	}
}

func summarize(plan *reconcile.Plan) planSummary {
	total := len(plan.BlockAlignments)
	rate := 1.0
	if total > 0 {
		rate = float64(plan.Stats.BlocksKept+plan.Stats.BlocksRecursed) / float64(total)
	}
	return planSummary{
		TotalBlocks:      total,
		BlocksKept:       plan.Stats.BlocksKept,
		BlocksReplaced:   plan.Stats.BlocksReplaced,
		BlocksRecursed:   plan.Stats.BlocksRecursed,
		PreservationRate: rate,
	}
}

// planStyles holds color formatters for the summary output.
type planStyles struct {
	heading *color.Color
	kept    *color.Color
	used    *color.Color
	recurse *color.Color
}

func newPlanStyles() *planStyles {
	return &planStyles{
		heading: color.New(color.Bold),
		kept:    color.New(color.FgHiGreen),
		used:    color.New(color.FgHiRed),
		recurse: color.New(color.FgHiYellow),
	}
}

func printSummary(cmd *cobra.Command, plan *reconcile.Plan, s planSummary) {
	out := cmd.OutOrStdout()
	st := newPlanStyles()

	fmt.Fprintln(out, st.heading.Sprint("Reconciliation Report"))
	fmt.Fprintln(out, st.heading.Sprint("====================="))
	fmt.Fprintf(out, "Before: %s\n", planBefore)
	fmt.Fprintf(out, "After:  %s\n\n", planAfter)

	fmt.Fprintln(out, st.heading.Sprint("Statistics:"))
	fmt.Fprintf(out, "  Total blocks in result:  %d\n", s.TotalBlocks)
	fmt.Fprintf(out, "  Blocks kept from before: %s\n", st.kept.Sprintf("%d", s.BlocksKept))
	fmt.Fprintf(out, "  Blocks used from after:  %s\n", st.used.Sprintf("%d", s.BlocksReplaced))
	fmt.Fprintf(out, "  Blocks with recursion:   %s\n", st.recurse.Sprintf("%d", s.BlocksRecursed))
	fmt.Fprintf(out, "  Inlines kept:            %d\n", plan.Stats.InlinesKept)
	fmt.Fprintf(out, "  Inlines replaced:        %d\n", plan.Stats.InlinesReplaced)
	fmt.Fprintf(out, "\n  Preservation rate:       %s\n\n", st.kept.Sprintf("%.1f%%", s.PreservationRate*100))

	if !verbose {
		return
	}
	fmt.Fprintln(out, st.heading.Sprint("Block Alignments:"))
	for i, a := range plan.BlockAlignments {
		switch a.Op {
		case reconcile.OpKeepBefore:
			fmt.Fprintf(out, "  [%d] %s before[%d]\n", i, st.kept.Sprint("KEEP"), a.Before)
		case reconcile.OpUseAfter:
			fmt.Fprintf(out, "  [%d] %s after[%d]\n", i, st.used.Sprint("USE"), a.After)
		case reconcile.OpRecurse:
			fmt.Fprintf(out, "  [%d] %s before[%d] after[%d]\n", i, st.recurse.Sprint("RECURSE"), a.Before, a.After)
		}
	}
}

// readDocument loads an AST JSON document from a file.
func readDocument(path string) (*ast.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc ast.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}
