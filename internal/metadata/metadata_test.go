package metadata_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bidslite/internal/faults"
	"bidslite/internal/metadata"
	"bidslite/internal/modality"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := write(t, "meta.csv", "\xef\xbb\xbfparticipant_id,session_id,age\n001,01,34\n\n002, 02 ,40\n")
	table, err := metadata.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"participant_id", "session_id", "age"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "02", table.Value(1, "session_id"))
	assert.Equal(t, "", table.Value(1, "missing"))
	assert.Equal(t, []string{"34", "40"}, table.Column("age"))
}

func TestReadTSVAndFallback(t *testing.T) {
	tsv := "participant_id\tsex\nAhmed\tM\n"
	table, err := metadata.Read(write(t, "meta.tsv", tsv))
	require.NoError(t, err)
	assert.True(t, table.Has("sex"))

	table, err = metadata.Read(write(t, "meta.txt", tsv))
	require.NoError(t, err)
	assert.Equal(t, []string{"participant_id", "sex"}, table.Columns)

	table, err = metadata.Read(write(t, "meta.dat", "participant_id,sex\nx,F\n"))
	require.NoError(t, err)
	assert.Equal(t, "F", table.Value(0, "sex"))
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.xlsx")
	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]any{"participant_id", "session_id"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]any{"Smith-2023_A", "1"}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	table, err := metadata.Read(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Smith-2023_A", table.Value(0, "participant_id"))
}

func TestReadErrors(t *testing.T) {
	_, err := metadata.Read(filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, errors.Is(err, faults.ErrNotFound))

	_, err = metadata.Read(write(t, "old.xls", "binary"))
	assert.True(t, errors.Is(err, faults.ErrValidation))

	_, err = metadata.Read(write(t, "empty.csv", ""))
	assert.True(t, errors.Is(err, faults.ErrValidation))
}

func TestRecords(t *testing.T) {
	table, err := metadata.Parse(strings.NewReader("participant_id,session_id,modality,age\nSub 1,1,T2w,30\n,,,\n002,,,41\n,02,,\n"), ',')
	require.NoError(t, err)
	records, err := metadata.Records(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "subu1", first.ParticipantID)
	assert.Equal(t, "001", first.SessionID)
	assert.True(t, first.HasSession())
	assert.Equal(t, modality.T2w, first.Modality)
	assert.Equal(t, []metadata.Field{{Name: "age", Value: "30"}}, first.Fields)

	second := records[1]
	assert.Equal(t, "002", second.ParticipantID)
	assert.False(t, second.HasSession())
	assert.Equal(t, modality.Tag(""), second.Modality)
	assert.Equal(t, 1, second.Row)
}

func TestRecordsRequiresParticipantColumn(t *testing.T) {
	table, err := metadata.Parse(strings.NewReader("subject\nx\n"), ',')
	require.NoError(t, err)
	_, err = metadata.Records(table)
	assert.True(t, errors.Is(err, faults.ErrValidation))
}

func TestNormalizedCopiesTable(t *testing.T) {
	table, err := metadata.Parse(strings.NewReader("participant_id,session_id,sex\nAb 1,2,F\n"), ',')
	require.NoError(t, err)
	norm := metadata.Normalized(table)
	assert.Equal(t, "abu1", norm.Value(0, "participant_id"))
	assert.Equal(t, "002", norm.Value(0, "session_id"))
	assert.Equal(t, "Ab 1", table.Value(0, "participant_id"))
}
