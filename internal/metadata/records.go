package metadata

import (
	"bidslite/internal/faults"
	"bidslite/internal/identifier"
	"bidslite/internal/modality"
)

// Field is one passthrough column value.
type Field struct {
	Name  string
	Value string
}

// Record is one normalized metadata row.
type Record struct {
	// Row is the zero-based data row index in the source table.
	Row           int
	ParticipantID string
	// SessionID is empty when the row carries no session.
	SessionID string
	Modality  modality.Tag
	Fields    []Field
}

// HasSession reports whether the row carried an explicit session value.
func (r Record) HasSession() bool {
	return r.SessionID != ""
}

// Records normalizes every row of table in order. Rows without a participant
// identifier are skipped.
func Records(table *Table) ([]Record, error) {
	if !table.Has(ColumnParticipant) {
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "records", "missing required column: "+ColumnParticipant, nil)
	}
	pIdx := table.Index(ColumnParticipant)
	sIdx := table.Index(ColumnSession)
	mIdx := table.Index(ColumnModality)

	records := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		pid := identifier.Normalize(row[pIdx])
		if pid == "" {
			continue
		}
		rec := Record{Row: i, ParticipantID: pid}
		if sIdx >= 0 {
			rec.SessionID = identifier.Normalize(row[sIdx])
		}
		if mIdx >= 0 {
			rec.Modality = modality.Parse(row[mIdx])
		}
		for c, name := range table.Columns {
			if c == pIdx || c == sIdx || c == mIdx {
				continue
			}
			rec.Fields = append(rec.Fields, Field{Name: name, Value: row[c]})
		}
		records = append(records, rec)
	}
	return records, nil
}

// Normalized returns a copy of table with participant and session columns
// normalized.
func Normalized(table *Table) *Table {
	out := &Table{Columns: append([]string(nil), table.Columns...)}
	pIdx := table.Index(ColumnParticipant)
	sIdx := table.Index(ColumnSession)
	for _, row := range table.Rows {
		copied := append([]string(nil), row...)
		if pIdx >= 0 {
			copied[pIdx] = identifier.Normalize(copied[pIdx])
		}
		if sIdx >= 0 {
			copied[sIdx] = identifier.Normalize(copied[sIdx])
		}
		out.Rows = append(out.Rows, copied)
	}
	return out
}
