package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bidslite/internal/dataset"
	"bidslite/internal/planner"
	"bidslite/internal/validation"
)

const defaultPlanPreview = 5

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var exportPath string
	var showTable bool
	var preview int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Produce a dry-run transform plan (no files are copied)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings, err := resolvePlanSettings(cfg, cmd, flags)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			insp, err := inspect(cfg, flags.inputFlags, settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !gateIssues(out, insp.issues, "planning") {
				return exitError{code: 1}
			}

			ops, err := buildPlan(cmd.Context(), cfg, settings, insp, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Planned %d operation(s).", len(ops))
			if len(ops) > 0 && preview != 0 {
				fmt.Fprint(out, " Example:")
			}
			fmt.Fprintln(out)
			printPlan(out, ops, preview, showTable)
			warnConflicts(logger, out, ops)

			if exportPath != "" {
				if err := dataset.WritePlan(exportPath, ops); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote dry-run plan JSON to: %s\n", exportPath)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&exportPath, "json", "", "Write the dry-run plan to this path (.yaml/.yml for YAML)")
	cmd.Flags().BoolVar(&showTable, "table", false, "Render the preview as a table")
	cmd.Flags().IntVar(&preview, "limit", defaultPlanPreview, "Number of operations to preview (-1 for all)")
	return cmd
}

// gateIssues prints validation findings and reports whether the run may
// continue. ERROR-level issues block, warnings are shown and tolerated.
func gateIssues(out io.Writer, issues []validation.Issue, stage string) bool {
	if validation.HasErrors(issues) {
		fmt.Fprintf(out, "Validation reported ERROR-level issues; fix them before %s.\n", stage)
		printIssues(out, issues)
		return false
	}
	if len(issues) > 0 {
		fmt.Fprintf(out, "Validation reported %d warning(s):\n", len(issues))
		printIssues(out, issues)
	}
	return true
}

func printPlan(out io.Writer, ops []planner.Operation, limit int, asTable bool) {
	shown := ops
	if limit >= 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	if len(shown) == 0 {
		return
	}
	if asTable {
		rows := make([][]string, 0, len(shown))
		for i, op := range shown {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), op.Action, op.Source, op.Destination})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Action", "Source", "Destination"}, rows, []columnAlignment{alignRight}))
	} else {
		for _, op := range shown {
			fmt.Fprintf(out, "- %s  ->  %s\n", op.Source, op.Destination)
		}
	}
	if len(shown) < len(ops) {
		fmt.Fprintf(out, "... and %d more\n", len(ops)-len(shown))
	}
}
