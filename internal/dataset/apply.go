package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bidslite/internal/fileutil"
	"bidslite/internal/logging"
	"bidslite/internal/planner"
)

// ActionMove replaces the planned copy when ApplyOptions.Move is set.
const ActionMove = "move"

// ApplyOptions configures Apply.
type ApplyOptions struct {
	// Move renames sources into place instead of copying them.
	Move   bool
	Logger *slog.Logger
	// Progress is called after every operation with the number handled so far.
	Progress func(done, total int)
	// OnResult is called after every operation with its outcome.
	OnResult func(Result)
}

// Result is the outcome of one operation.
type Result struct {
	Operation planner.Operation
	Action    string
	Bytes     int64
	Err       error
}

// Summary counts the outcomes of an Apply call.
type Summary struct {
	Ops    int      `json:"n_ops"`
	OK     int      `json:"n_ok"`
	Failed int      `json:"n_failed"`
	Errors []string `json:"errors"`
}

// Apply executes ops in order. Individual failures are recorded in the
// summary and never stop the run. A cancelled context stops before the next
// operation and is returned alongside the partial summary.
func Apply(ctx context.Context, ops []planner.Operation, opts ApplyOptions) (Summary, error) {
	logger := logging.NewComponentLogger(opts.Logger, "dataset")
	summary := Summary{Errors: []string{}}
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			logger.Warn("apply interrupted",
				logging.Int("handled", i),
				logging.Int("total", len(ops)),
				logging.Error(err),
			)
			return summary, err
		}
		res := applyOne(op, opts.Move)
		summary.Ops++
		if res.Err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, res.Err.Error())
			logger.Warn("operation failed",
				logging.String("src", op.Source),
				logging.String("dst", op.Destination),
				logging.String("action", res.Action),
				logging.Error(res.Err),
			)
		} else {
			summary.OK++
			logger.Debug("operation done",
				logging.String("src", op.Source),
				logging.String("dst", op.Destination),
				logging.String("action", res.Action),
				logging.Int64("bytes", res.Bytes),
			)
		}
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(ops))
		}
	}
	logger.Info("apply complete",
		logging.Int("ops", summary.Ops),
		logging.Int("ok", summary.OK),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

func applyOne(op planner.Operation, move bool) Result {
	action := op.Action
	if action == "" {
		action = planner.ActionCopy
	}
	if move {
		action = ActionMove
	}
	res := Result{Operation: op, Action: action}

	info, err := os.Stat(op.Source)
	if err != nil || !info.Mode().IsRegular() {
		res.Err = fmt.Errorf("Source missing: %s", op.Source)
		return res
	}
	res.Bytes = info.Size()

	if action == ActionMove {
		err = fileutil.MoveFile(op.Source, op.Destination)
	} else {
		err = fileutil.CopyFileVerified(op.Source, op.Destination)
	}
	if err != nil {
		res.Err = fmt.Errorf("Failed %s %s -> %s: %w", action, op.Source, op.Destination, err)
	}
	return res
}

// PlanSize returns the total size of the sources in ops that exist.
func PlanSize(ops []planner.Operation) uint64 {
	var total uint64
	for _, op := range ops {
		if info, err := os.Stat(op.Source); err == nil && info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
	}
	return total
}
