package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bidslite/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var flags inputFlags
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate metadata and basic file existence",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings, err := configPlanSettings(cfg)
			if err != nil {
				return err
			}
			insp, err := inspect(cfg, flags, settings)
			if err != nil {
				return err
			}
			if jsonOut {
				issues := insp.issues
				if issues == nil {
					issues = []validation.Issue{}
				}
				if err := writeJSON(cmd, issues); err != nil {
					return err
				}
				if len(insp.issues) > 0 {
					return exitError{code: 1}
				}
				return nil
			}

			out := cmd.OutOrStdout()
			if len(insp.issues) > 0 {
				fmt.Fprintf(out, "Found %d issue(s):\n", len(insp.issues))
				printIssues(out, insp.issues)
				return exitError{code: 1}
			}
			fmt.Fprintln(out, "Validation passed. No blocking issues found.")
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print issues as JSON")
	return cmd
}
