package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bidslite/internal/ledger"
)

const defaultHistoryLimit = 20

// runView is the JSON shape of a run.
type runView struct {
	ID           string          `json:"id"`
	Command      string          `json:"command"`
	Status       string          `json:"status"`
	InputDir     string          `json:"input_dir,omitempty"`
	MetadataPath string          `json:"metadata_path,omitempty"`
	OutputDir    string          `json:"output_dir,omitempty"`
	DatasetType  string          `json:"dataset_type"`
	PipelineName string          `json:"pipeline_name,omitempty"`
	Move         bool            `json:"move"`
	Planned      int             `json:"planned"`
	OK           int             `json:"ok"`
	Failed       int             `json:"failed"`
	Error        string          `json:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	Operations   []operationView `json:"operations,omitempty"`
}

type operationView struct {
	Seq         int    `json:"seq"`
	Source      string `json:"src"`
	Destination string `json:"dst"`
	Action      string `json:"action"`
	Status      string `json:"status"`
	Bytes       int64  `json:"bytes"`
	Error       string `json:"error,omitempty"`
}

func newRunView(run *ledger.Run) runView {
	return runView{
		ID:           run.ID,
		Command:      run.Command,
		Status:       string(run.Status),
		InputDir:     run.InputDir,
		MetadataPath: run.MetadataPath,
		OutputDir:    run.OutputDir,
		DatasetType:  run.DatasetType,
		PipelineName: run.PipelineName,
		Move:         run.Move,
		Planned:      run.Planned,
		OK:           run.OK,
		Failed:       run.Failed,
		Error:        run.ErrorMessage,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded apply runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.Status),
					run.DatasetType,
					strconv.Itoa(run.Planned),
					strconv.Itoa(run.OK),
					strconv.Itoa(run.Failed),
					run.OutputDir,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Status", "Type", "Planned", "OK", "Failed", "Output"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a recorded run and its operations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			ops, err := store.Operations(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			view := newRunView(run)
			var totalBytes int64
			for _, op := range ops {
				view.Operations = append(view.Operations, operationView{
					Seq:         op.Seq,
					Source:      op.Source,
					Destination: op.Destination,
					Action:      op.Action,
					Status:      op.Status,
					Bytes:       op.Bytes,
					Error:       op.ErrorMessage,
				})
				totalBytes += op.Bytes
			}
			if jsonOut {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			fmt.Fprintln(out, renderStatusLine("Run", runStatusKind(view.Status), view.ID, colorize))
			finished := "-"
			if run.FinishedAt != nil {
				finished = run.FinishedAt.Local().Format(time.DateTime)
			}
			pipeline := run.PipelineName
			if pipeline == "" {
				pipeline = "-"
			}
			fmt.Fprintln(out, renderDetails([][2]string{
				{"Status", view.Status},
				{"Started", run.StartedAt.Local().Format(time.DateTime)},
				{"Finished", finished},
				{"Input", run.InputDir},
				{"Metadata", run.MetadataPath},
				{"Output", run.OutputDir},
				{"Dataset type", run.DatasetType},
				{"Pipeline", pipeline},
				{"Move", yesNo(run.Move)},
				{"Operations", fmt.Sprintf("%d planned, %d ok, %d failed", run.Planned, run.OK, run.Failed)},
				{"Data", humanize.Bytes(uint64(max(totalBytes, 0)))},
			}))
			if run.ErrorMessage != "" {
				fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
			}
			if len(ops) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(ops))
			for _, op := range ops {
				detail := op.ErrorMessage
				if detail == "" {
					detail = humanize.Bytes(uint64(max(op.Bytes, 0)))
				}
				rows = append(rows, []string{strconv.Itoa(op.Seq), op.Status, op.Action, op.Source, op.Destination, detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Status", "Action", "Source", "Destination", "Detail"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
