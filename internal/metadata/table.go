package metadata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bidslite/internal/faults"
)

// Well-known column names.
const (
	ColumnParticipant = "participant_id"
	ColumnSession     = "session_id"
	ColumnModality    = "modality"
	ColumnAge         = "age"
	ColumnSex         = "sex"
)

// Table is a rectangular view of a metadata sheet. Rows are padded to the
// column count.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Has reports whether the table carries column.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Index returns the position of column or -1.
func (t *Table) Index(column string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Value returns the cell at row for column, or "" when absent.
func (t *Table) Value(row int, column string) string {
	idx := t.Index(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// Column returns every value of column in row order.
func (t *Table) Column(column string) []string {
	idx := t.Index(column)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Read loads a metadata table. The format follows the file extension; files
// with other extensions are tried as CSV, then as TSV.
func Read(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	case ".xls":
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "read", fmt.Sprintf("legacy .xls workbooks are not supported; save %s as .xlsx or .csv", filepath.Base(path)), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, "metadata", "read", fmt.Sprintf("metadata file %q does not exist", path), err)
		}
		return nil, faults.Wrap(faults.ErrIO, "metadata", "read", "open metadata file", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	switch ext {
	case ".csv":
		return parseDelimited(data, ',')
	case ".tsv", ".tab":
		return parseDelimited(data, '\t')
	}
	table, err := parseDelimited(data, ',')
	if err == nil && len(table.Columns) > 1 {
		return table, nil
	}
	if tsv, tsvErr := parseDelimited(data, '\t'); tsvErr == nil {
		return tsv, nil
	}
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Parse reads delimited text from r.
func Parse(r io.Reader, delimiter rune) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "metadata", "parse", "read input", err)
	}
	return parseDelimited(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), delimiter)
}

func parseDelimited(data []byte, delimiter rune) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "parse", "malformed table", err)
	}
	return newTable(records)
}

func readWorkbook(path string) (*Table, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, "metadata", "read", fmt.Sprintf("metadata file %q does not exist", path), err)
		}
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "read", fmt.Sprintf("failed to read Excel file %s", filepath.Base(path)), err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "read", "workbook has no sheets", nil)
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "read", fmt.Sprintf("read sheet %q", sheets[0]), err)
	}
	return newTable(rows)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, faults.Wrap(faults.ErrValidation, "metadata", "parse", "table has no header row", nil)
	}
	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}
	table := &Table{Columns: header}
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make([]string, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
