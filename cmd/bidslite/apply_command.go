package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bidslite/internal/config"
	"bidslite/internal/dataset"
	"bidslite/internal/faults"
	"bidslite/internal/layout"
	"bidslite/internal/ledger"
	"bidslite/internal/logging"
	"bidslite/internal/metadata"
	"bidslite/internal/preflight"
)

type applyOptions struct {
	move           bool
	phenotype      []string
	publication    []string
	readmeTemplate string
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Plan and execute the transform, then write dataset sidecars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings, err := resolvePlanSettings(cfg, cmd, flags)
			if err != nil {
				return err
			}
			if len(opts.publication) > 0 && settings.datasetType != layout.Derivatives {
				return errors.New("--publication requires --dataset-type derivatives")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}
			return runApply(cmd, cfg, settings, flags, opts, logger, store)
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&opts.move, "move", false, "Move files instead of copying them")
	cmd.Flags().StringArrayVar(&opts.phenotype, "phenotype", nil, "Supplementary file to copy into phenotype/ (repeatable)")
	cmd.Flags().StringArrayVar(&opts.publication, "publication", nil, "Key result file to copy into derivatives/publications/ (repeatable)")
	cmd.Flags().StringVar(&opts.readmeTemplate, "readme-template", "", "README.md template used when the dataset has none")
	return cmd
}

func runApply(cmd *cobra.Command, cfg *config.Config, settings planSettings, flags planFlags, opts applyOptions, logger *slog.Logger, store *ledger.Store) error {
	out := cmd.OutOrStdout()
	in, err := flags.inputFlags.resolved()
	if err != nil {
		return err
	}
	if failed := preflight.Failed([]preflight.Result{preflight.CheckInputDir(in.inDir)}); len(failed) > 0 {
		return reportPreflight(out, failed)
	}

	insp, err := inspect(cfg, in, settings)
	if err != nil {
		return err
	}
	if !gateIssues(out, insp.issues, "applying") {
		return exitError{code: 1}
	}

	runID := uuid.NewString()
	runCtx := faults.WithRunID(cmd.Context(), runID)
	logger = logging.WithContext(runCtx, logger)

	ops, err := buildPlan(runCtx, cfg, settings, insp, logger)
	if err != nil {
		return err
	}
	warnConflicts(logger, out, ops)

	lock, err := dataset.AcquireLock(settings.outDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	required := dataset.PlanSize(ops)
	if opts.move {
		required = 0
	}
	if failed := preflight.Failed([]preflight.Result{preflight.CheckOutputDir(settings.outDir, required)}); len(failed) > 0 {
		return reportPreflight(out, failed)
	}

	recorder := newRunRecorder(runCtx, store, logger)
	recorder.begin(ledger.Run{
		ID:           runID,
		Command:      "apply",
		InputDir:     in.inDir,
		MetadataPath: in.metaPath,
		OutputDir:    settings.outDir,
		DatasetType:  string(settings.datasetType),
		PipelineName: settings.pipelineName,
		Move:         opts.move,
		Planned:      len(ops),
	})

	logger.Info("apply started",
		logging.Int("operations", len(ops)),
		logging.String("out", settings.outDir),
		logging.Bool("move", opts.move),
	)
	bar := newApplyProgress(cmd.ErrOrStderr(), len(ops))
	summary, applyErr := dataset.Apply(runCtx, ops, dataset.ApplyOptions{
		Move:     opts.move,
		Logger:   logger,
		Progress: bar.update,
		OnResult: recorder.record,
	})
	bar.finish()
	if applyErr != nil {
		recorder.finish(ledger.Outcome{Status: ledger.StatusInterrupted, OK: summary.OK, Failed: summary.Failed, ErrorMessage: applyErr.Error()})
		return applyErr
	}

	root := settings.datasetRoot()
	counts, err := writeSidecars(cfg, settings, insp.table, opts)
	if err != nil {
		recorder.finish(ledger.Outcome{Status: ledger.StatusFailed, OK: summary.OK, Failed: summary.Failed, ErrorMessage: err.Error()})
		return err
	}
	reportPath, err := dataset.WriteReport(root, dataset.ReportInput{
		RunID:   runID,
		Issues:  insp.issues,
		Summary: summary,
		Plan:    ops,
	})
	if err != nil {
		recorder.finish(ledger.Outcome{Status: ledger.StatusFailed, OK: summary.OK, Failed: summary.Failed, ErrorMessage: err.Error()})
		return err
	}

	status := ledger.StatusCompleted
	if summary.Failed > 0 {
		status = ledger.StatusFailed
	}
	recorder.finish(ledger.Outcome{Status: status, OK: summary.OK, Failed: summary.Failed})

	fmt.Fprintf(out, "Apply done: %d ok, %d failed\n", summary.OK, summary.Failed)
	for _, msg := range summary.Errors {
		fmt.Fprintf(out, "- %s\n", msg)
	}
	fmt.Fprintf(out, "BIDS root: %s\n", root)
	if counts.phenotype > 0 {
		fmt.Fprintf(out, "Copied %d phenotype file(s) to %s\n", counts.phenotype, counts.phenotypeDir)
	}
	if counts.publication > 0 {
		fmt.Fprintf(out, "Copied %d publication file(s) to %s\n", counts.publication, counts.publicationDir)
	}
	fmt.Fprintf(out, "Report: %s\n", reportPath)
	if store != nil {
		fmt.Fprintf(out, "Run ID: %s\n", runID)
	}
	if summary.Failed > 0 {
		return exitError{code: 1}
	}
	return nil
}

type sidecarCounts struct {
	phenotype      int
	phenotypeDir   string
	publication    int
	publicationDir string
}

func writeSidecars(cfg *config.Config, settings planSettings, table *metadata.Table, opts applyOptions) (sidecarCounts, error) {
	var counts sidecarCounts
	root := settings.datasetRoot()
	if _, err := dataset.WriteDatasetDescription(root, dataset.Description{
		DatasetType:  settings.datasetType,
		PipelineName: settings.pipelineName,
		Name:         cfg.Dataset.Name,
		BIDSVersion:  cfg.Dataset.BIDSVersion,
		Authors:      cfg.Dataset.Authors,
	}); err != nil {
		return counts, err
	}
	if _, err := dataset.WriteParticipantsTSV(root, metadata.Normalized(table)); err != nil {
		return counts, err
	}
	if _, err := dataset.WriteReadme(root, strings.TrimSpace(opts.readmeTemplate)); err != nil {
		return counts, err
	}

	var err error
	counts.phenotypeDir = filepath.Join(root, "phenotype")
	if counts.phenotype, err = dataset.WritePhenotypeFiles(settings.outDir, opts.phenotype, settings.datasetType, settings.pipelineName); err != nil {
		return counts, err
	}
	counts.publicationDir = filepath.Join(settings.outDir, "derivatives", "publications", settings.pipelineName)
	if counts.publication, err = dataset.WritePublicationFiles(settings.outDir, opts.publication, settings.pipelineName); err != nil {
		return counts, err
	}
	return counts, nil
}

func reportPreflight(out io.Writer, failed []preflight.Result) error {
	for _, r := range failed {
		fmt.Fprintf(out, "Preflight failed: %s: %s\n", r.Name, r.Detail)
	}
	return exitError{code: 1}
}

// runRecorder mirrors an apply run into the ledger. History failures are
// logged and never abort the run.
type runRecorder struct {
	ctx    context.Context
	store  *ledger.Store
	logger *slog.Logger
	runID  string
	seq    int
}

func newRunRecorder(ctx context.Context, store *ledger.Store, logger *slog.Logger) *runRecorder {
	return &runRecorder{ctx: ctx, store: store, logger: logger}
}

func (r *runRecorder) begin(run ledger.Run) {
	r.runID = run.ID
	if r.store == nil {
		return
	}
	if _, err := r.store.BeginRun(context.WithoutCancel(r.ctx), run); err != nil {
		r.warn("record run start", err)
		r.store = nil
	}
}

func (r *runRecorder) record(res dataset.Result) {
	r.seq++
	if r.store == nil {
		return
	}
	rec := ledger.OperationRecord{
		Seq:         r.seq,
		Source:      res.Operation.Source,
		Destination: res.Operation.Destination,
		Action:      res.Action,
		Status:      ledger.OperationOK,
		Bytes:       res.Bytes,
	}
	if res.Err != nil {
		rec.Status = ledger.OperationFailed
		rec.ErrorMessage = res.Err.Error()
	}
	if err := r.store.RecordOperation(context.WithoutCancel(r.ctx), r.runID, rec); err != nil {
		r.warn("record operation", err)
	}
}

func (r *runRecorder) finish(outcome ledger.Outcome) {
	if r.store == nil {
		return
	}
	if err := r.store.FinishRun(context.WithoutCancel(r.ctx), r.runID, outcome); err != nil {
		r.warn("record run outcome", err)
	}
}

func (r *runRecorder) warn(step string, err error) {
	logging.WarnWithContext(r.logger, "run history unavailable", "history_write_failed",
		logging.String("step", step),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check history.path permissions"),
		logging.String(logging.FieldImpact, "run not recorded in history"),
	)
}
