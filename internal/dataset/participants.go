package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"

	"bidslite/internal/faults"
	"bidslite/internal/metadata"
)

// ParticipantsFile is the BIDS participants table name.
const ParticipantsFile = "participants.tsv"

var leadingColumns = []string{metadata.ColumnSession, metadata.ColumnAge, metadata.ColumnSex}

// WriteParticipantsTSV writes participants.tsv into dir. The table is
// expected to be normalized already. participant_id values gain the "sub-"
// prefix; session_id, age and sex follow when present, then the remaining
// columns in their original order. The modality column is dropped.
func WriteParticipantsTSV(dir string, table *metadata.Table) (string, error) {
	if !table.Has(metadata.ColumnParticipant) {
		return "", faults.Wrap(faults.ErrValidation, "dataset", "participants", "metadata has no participant_id column", nil)
	}
	columns := participantColumns(table)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "participants", "create dataset root", err)
	}
	path := filepath.Join(dir, ParticipantsFile)
	file, err := os.Create(path)
	if err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "participants", "create "+ParticipantsFile, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = '\t'
	if err := w.Write(columns); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "participants", "write header", err)
	}
	for row := range table.Rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			value := table.Value(row, col)
			if col == metadata.ColumnParticipant {
				value = "sub-" + value
			}
			record[i] = value
		}
		if err := w.Write(record); err != nil {
			return "", faults.Wrap(faults.ErrIO, "dataset", "participants", "write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "participants", "flush", err)
	}
	if err := file.Close(); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dataset", "participants", "close", err)
	}
	return path, nil
}

func participantColumns(table *metadata.Table) []string {
	columns := []string{metadata.ColumnParticipant}
	for _, col := range leadingColumns {
		if table.Has(col) {
			columns = append(columns, col)
		}
	}
	for _, col := range table.Columns {
		if col == metadata.ColumnModality || slices.Contains(columns, col) {
			continue
		}
		columns = append(columns, col)
	}
	return columns
}
