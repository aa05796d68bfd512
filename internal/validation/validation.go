package validation

import (
	"fmt"
	"regexp"
	"strings"

	"bidslite/internal/metadata"
	"bidslite/internal/planner"
	"bidslite/internal/source"
	"bidslite/internal/textutil"
)

// Level classifies an issue.
type Level string

const (
	LevelError Level = "ERROR"
	LevelWarn  Level = "WARN"
)

// Issue codes.
const (
	CodeMissingColumn = "MISSING_COL"
	CodeIllegalChar   = "ILLEGAL_CHAR"
	CodeBadSex        = "BAD_SEX"
	CodeFileMissing   = "FILE_MISSING"
)

// HintThreshold is the minimum similarity for a closest-file suggestion.
const HintThreshold = 0.3

// Issue is one validation finding.
type Issue struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`
	Message string `json:"msg"`
	Hint    string `json:"hint,omitempty"`
}

// Checklist holds the table requirements. Planning carries the dataset type,
// default session, extensions and modality filter used by the planner, so a
// record is only reported as found when the planner would claim a file for it.
type Checklist struct {
	RequiredColumns []string
	AllowedSex      []string
	Planning        planner.Options
}

// DefaultChecklist requires participant_id and accepts the common sex codes.
func DefaultChecklist() Checklist {
	return Checklist{
		RequiredColumns: []string{metadata.ColumnParticipant},
		AllowedSex:      []string{"M", "F", "Male", "Female", "f", "m", "male", "female", "NA", "na", "N/A", ""},
	}
}

var illegalChars = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// Validate inspects table against checklist and files. Missing required
// columns end validation early.
func Validate(table *metadata.Table, files []source.File, checklist Checklist) []Issue {
	var issues []Issue
	for _, col := range checklist.RequiredColumns {
		if !table.Has(col) {
			issues = append(issues, Issue{Level: LevelError, Code: CodeMissingColumn, Message: "Missing required column: " + col})
		}
	}
	if len(issues) > 0 {
		return issues
	}

	for _, col := range []string{metadata.ColumnParticipant, metadata.ColumnSession} {
		if !table.Has(col) {
			continue
		}
		var bad []string
		for _, value := range table.Column(col) {
			if illegalChars.MatchString(value) {
				bad = append(bad, value)
			}
		}
		if len(bad) > 0 {
			issues = append(issues, Issue{
				Level:   LevelError,
				Code:    CodeIllegalChar,
				Message: col + " contains spaces or illegal characters.",
				Hint:    "offending values: " + quoteList(bad, 5),
			})
		}
	}

	if table.Has(metadata.ColumnSex) {
		allowed := make(map[string]struct{}, len(checklist.AllowedSex))
		for _, v := range checklist.AllowedSex {
			allowed[v] = struct{}{}
		}
		for _, value := range table.Column(metadata.ColumnSex) {
			if _, ok := allowed[value]; !ok {
				issues = append(issues, Issue{
					Level:   LevelWarn,
					Code:    CodeBadSex,
					Message: fmt.Sprintf("Some sex values are not in standard format. Allowed: %s", quoteList(checklist.AllowedSex, 0)),
				})
				break
			}
		}
	}

	return append(issues, missingFiles(table, files, checklist.Planning)...)
}

func missingFiles(table *metadata.Table, files []source.File, opts planner.Options) []Issue {
	records, err := metadata.Records(table)
	if err != nil {
		return nil
	}
	p := planner.New(opts)
	eligible := p.Eligible(files)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}

	var issues []Issue
	for _, rec := range records {
		found := false
		for _, f := range eligible {
			if p.Accepts(rec, f) {
				found = true
				break
			}
		}
		if found {
			continue
		}

		pidRaw := table.Value(rec.Row, metadata.ColumnParticipant)
		issue := Issue{Level: LevelWarn, Code: CodeFileMissing}
		if rec.HasSession() {
			issue.Message = fmt.Sprintf("No file found matching participant=%s, session=%s", pidRaw, table.Value(rec.Row, metadata.ColumnSession))
		} else {
			issue.Message = fmt.Sprintf("No file found matching participant=%s", pidRaw)
		}
		if best, score := textutil.Nearest(pidRaw, names); score >= HintThreshold {
			issue.Hint = fmt.Sprintf("closest file name: %s", best)
		}
		issues = append(issues, issue)
	}
	return issues
}

// HasErrors reports whether any issue blocks planning.
func HasErrors(issues []Issue) bool {
	return Count(issues, LevelError) > 0
}

// Count returns the number of issues at level.
func Count(issues []Issue, level Level) int {
	n := 0
	for _, issue := range issues {
		if issue.Level == level {
			n++
		}
	}
	return n
}

func quoteList(values []string, limit int) string {
	shown := values
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	quoted := make([]string, len(shown))
	for i, v := range shown {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	out := "[" + strings.Join(quoted, ", ") + "]"
	if len(shown) < len(values) {
		out += fmt.Sprintf(" and %d more", len(values)-len(shown))
	}
	return out
}
