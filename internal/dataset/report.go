package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bidslite/internal/faults"
	"bidslite/internal/planner"
	"bidslite/internal/validation"
)

const (
	reportDir  = "logs"
	reportFile = "report.md"
	// ReportPlanLimit caps the planned operations listed in the report.
	ReportPlanLimit = 20
)

// ReportInput is the content of a run report. A nil Issues slice means
// validation results were not supplied.
type ReportInput struct {
	RunID   string
	Issues  []validation.Issue
	Summary Summary
	Plan    []planner.Operation
}

// WriteReport writes logs/report.md under dir and returns its path.
func WriteReport(dir string, in ReportInput) (string, error) {
	var b strings.Builder
	b.WriteString("# BIDS Lite Organizer Report\n")
	if in.RunID != "" {
		fmt.Fprintf(&b, "\nRun: `%s`\n", in.RunID)
	}

	b.WriteString("\n## Validation Issues\n")
	switch {
	case in.Issues == nil:
		b.WriteString("- None (not provided to report)\n")
	case len(in.Issues) == 0:
		b.WriteString("- None\n")
	default:
		for _, issue := range in.Issues {
			fmt.Fprintf(&b, "- **%s %s**: %s\n", issue.Level, issue.Code, issue.Message)
		}
	}

	b.WriteString("\n## Operations Summary\n")
	fmt.Fprintf(&b, "- Planned operations: %d\n", in.Summary.Ops)
	fmt.Fprintf(&b, "- Successful: %d\n", in.Summary.OK)
	fmt.Fprintf(&b, "- Failed: %d\n", in.Summary.Failed)

	if len(in.Summary.Errors) > 0 {
		b.WriteString("\n### Operation Errors\n")
		for _, msg := range in.Summary.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}

	fmt.Fprintf(&b, "\n## Planned Operations (first %d)\n", ReportPlanLimit)
	for i, op := range in.Plan {
		if i == ReportPlanLimit {
			break
		}
		fmt.Fprintf(&b, "- %s  →  %s\n", op.Source, op.Destination)
	}

	logDir := filepath.Join(dir, reportDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "report", "create logs directory", err)
	}
	path := filepath.Join(logDir, reportFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "report", "write "+reportFile, err)
	}
	return path, nil
}
