package ledger

import (
	"database/sql"
	"errors"
	"time"
)

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, command, status, input_dir, metadata_path, output_dir, dataset_type,
    pipeline_name, move, planned, ok, failed, error_message, started_at, finished_at`

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var inputDir, metaPath, outputDir, pipeline, errMsg, finishedAt sql.NullString
	var startedAt string
	var move int
	if err := row.Scan(
		&run.ID, &run.Command, &run.Status, &inputDir, &metaPath, &outputDir, &run.DatasetType,
		&pipeline, &move, &run.Planned, &run.OK, &run.Failed, &errMsg, &startedAt, &finishedAt,
	); err != nil {
		return nil, err
	}
	run.InputDir = inputDir.String
	run.MetadataPath = metaPath.String
	run.OutputDir = outputDir.String
	run.PipelineName = pipeline.String
	run.ErrorMessage = errMsg.String
	run.Move = move != 0
	if ts, err := parseTimeString(startedAt); err == nil {
		run.StartedAt = ts
	}
	if finishedAt.Valid {
		if ts, err := parseTimeString(finishedAt.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return &run, nil
}
