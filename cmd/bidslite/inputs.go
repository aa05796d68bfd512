package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"bidslite/internal/config"
	"bidslite/internal/faults"
	"bidslite/internal/identifier"
	"bidslite/internal/layout"
	"bidslite/internal/logging"
	"bidslite/internal/metadata"
	"bidslite/internal/modality"
	"bidslite/internal/planner"
	"bidslite/internal/source"
	"bidslite/internal/validation"
)

const pipelineRequiredMsg = "--pipeline-name is required for derivatives dataset type"

// inputFlags are shared by every command that reads an input tree and a
// metadata table.
type inputFlags struct {
	inDir    string
	metaPath string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inDir, "in", "", "Incoming folder with messy files")
	cmd.Flags().StringVar(&f.metaPath, "meta", "", "Metadata table (CSV, TSV, or XLSX)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("meta")
}

// resolved returns f with both paths expanded to absolute form.
func (f inputFlags) resolved() (inputFlags, error) {
	inDir, err := config.ExpandPath(strings.TrimSpace(f.inDir))
	if err != nil {
		return f, fmt.Errorf("resolve --in: %w", err)
	}
	metaPath, err := config.ExpandPath(strings.TrimSpace(f.metaPath))
	if err != nil {
		return f, fmt.Errorf("resolve --meta: %w", err)
	}
	return inputFlags{inDir: inDir, metaPath: metaPath}, nil
}

// planFlags extend inputFlags with planning options.
type planFlags struct {
	inputFlags
	outDir       string
	datasetType  string
	pipelineName string
	matchAll     bool
}

func (f *planFlags) bind(cmd *cobra.Command) {
	f.inputFlags.bind(cmd)
	cmd.Flags().StringVar(&f.outDir, "out", "", "Target BIDS output directory")
	cmd.Flags().StringVar(&f.datasetType, "dataset-type", "", "Dataset type: raw or derivatives (default from config)")
	cmd.Flags().StringVar(&f.pipelineName, "pipeline-name", "", "Pipeline name (required for derivatives)")
	cmd.Flags().BoolVar(&f.matchAll, "match-all-modalities", false, "Claim every file matching a participant regardless of the modality column")
	_ = cmd.MarkFlagRequired("out")
}

// inspection is the result of reading and validating the inputs.
type inspection struct {
	table  *metadata.Table
	files  []source.File
	issues []validation.Issue
}

// inspect reads the metadata table, scans the input tree once, and validates
// both against the configured checklist and the planning rules of settings.
func inspect(cfg *config.Config, in inputFlags, settings planSettings) (*inspection, error) {
	in, err := in.resolved()
	if err != nil {
		return nil, err
	}
	table, err := metadata.Read(in.metaPath)
	if err != nil {
		return nil, err
	}
	files, err := source.Scan(in.inDir, source.ScanOptions{Exclude: cfg.Scan.Exclude})
	if err != nil {
		return nil, err
	}
	checklist := validation.Checklist{
		RequiredColumns: cfg.Validation.RequiredColumns,
		AllowedSex:      cfg.Validation.AllowedSex,
		Planning:        plannerOptions(cfg, settings, nil),
	}
	return &inspection{
		table:  table,
		files:  files,
		issues: validation.Validate(table, files, checklist),
	}, nil
}

// planSettings is the resolved combination of config values and flags.
type planSettings struct {
	outDir       string
	datasetType  layout.DatasetType
	pipelineName string
	matchAll     bool
	dirs         layout.Dirs
}

// configPlanSettings returns the planning settings given by cfg alone.
func configPlanSettings(cfg *config.Config) (planSettings, error) {
	datasetType, err := layout.ParseDatasetType(cfg.Dataset.Type)
	if err != nil {
		return planSettings{}, err
	}
	return planSettings{
		datasetType:  datasetType,
		pipelineName: cfg.Dataset.PipelineName,
		matchAll:     cfg.Matching.MatchAllModalities,
		dirs:         configDirs(cfg),
	}, nil
}

func configDirs(cfg *config.Config) layout.Dirs {
	return layout.Dirs{
		Anat:        cfg.Layout.AnatDir,
		Func:        cfg.Layout.FuncDir,
		Custom:      cfg.Layout.CustomDir,
		Derivatives: cfg.Layout.DerivativesDir,
	}
}

func resolvePlanSettings(cfg *config.Config, cmd *cobra.Command, f planFlags) (planSettings, error) {
	rawType := cfg.Dataset.Type
	if cmd.Flags().Changed("dataset-type") {
		rawType = f.datasetType
	}
	datasetType, err := layout.ParseDatasetType(rawType)
	if err != nil {
		return planSettings{}, err
	}
	pipeline := cfg.Dataset.PipelineName
	if cmd.Flags().Changed("pipeline-name") {
		pipeline = strings.TrimSpace(f.pipelineName)
	}
	if datasetType == layout.Derivatives && pipeline == "" {
		return planSettings{}, errors.New(pipelineRequiredMsg)
	}
	if strings.ContainsAny(pipeline, `/\`) {
		return planSettings{}, faults.Wrap(faults.ErrConfiguration, "cli", "plan", fmt.Sprintf("pipeline name %q must not contain path separators", pipeline), nil)
	}
	outDir, err := config.ExpandPath(strings.TrimSpace(f.outDir))
	if err != nil {
		return planSettings{}, fmt.Errorf("resolve --out: %w", err)
	}
	return planSettings{
		outDir:       outDir,
		datasetType:  datasetType,
		pipelineName: pipeline,
		matchAll:     f.matchAll || cfg.Matching.MatchAllModalities,
		dirs:         configDirs(cfg),
	}, nil
}

// datasetRoot is the folder that receives dataset_description.json.
func (s planSettings) datasetRoot() string {
	return layout.Builder{Root: s.outDir, Dirs: s.dirs}.DatasetRoot(s.datasetType, s.pipelineName)
}

func buildPlan(ctx context.Context, cfg *config.Config, settings planSettings, insp *inspection, logger *slog.Logger) ([]planner.Operation, error) {
	records, err := metadata.Records(insp.table)
	if err != nil {
		return nil, err
	}
	p := planner.New(plannerOptions(cfg, settings, logger))
	return p.Plan(ctx, source.StaticSnapshot(insp.files), records)
}

func plannerOptions(cfg *config.Config, settings planSettings, logger *slog.Logger) planner.Options {
	return planner.Options{
		DatasetType:        settings.datasetType,
		PipelineName:       settings.pipelineName,
		MatchAllModalities: settings.matchAll,
		OutputRoot:         settings.outDir,
		Defaults: planner.Defaults{
			Session:    identifier.Normalize(cfg.Layout.DefaultSession),
			Modality:   modality.Parse(cfg.Layout.DefaultModality),
			Dirs:       settings.dirs,
			Extensions: cfg.Scan.Extensions,
		},
		Logger: logger,
	}
}

func printIssues(w io.Writer, issues []validation.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(w, "- [%s] %s: %s\n", issue.Level, issue.Code, issue.Message)
		if issue.Hint != "" {
			fmt.Fprintf(w, "    hint: %s\n", issue.Hint)
		}
	}
}

func warnConflicts(logger *slog.Logger, w io.Writer, ops []planner.Operation) {
	for _, conflict := range planner.DestinationConflicts(ops) {
		fmt.Fprintf(w, "Warning: %d sources map to %s\n", len(conflict.Sources), conflict.Destination)
		logging.WarnWithContext(logger, "destination collision in plan", "plan_conflict",
			logging.String("destination", conflict.Destination),
			logging.Int("sources", len(conflict.Sources)),
			logging.String(logging.FieldErrorHint, "add a modality column or rename the inputs"),
			logging.String(logging.FieldImpact, "later operations overwrite earlier ones"),
		)
	}
}
