package core

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sweeper/internal/table"
)

// mustTable builds a table from string records with type inference.
func mustTable(t *testing.T, name string, header []string, rows ...[]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords(name, header, rows)
	require.NoError(t, err)
	return tbl
}

// column returns the string form of every cell of a column.
func column(t *testing.T, tbl *table.Table, name string) []string {
	t.Helper()
	cells, ok := tbl.Column(name)
	require.True(t, ok, "column %q", name)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}

// workbook builds an xlsx file with the given rows on its first sheet.
func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
