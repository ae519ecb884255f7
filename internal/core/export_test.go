package core

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sweeper/internal/table"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		name, ext, want string
	}{
		{"sales.csv", ".csv", "sales_processed.csv"},
		{"sales.csv", ".xlsx", "sales_processed.xlsx"},
		{"report.v2.xlsx", ".csv", "report.v2_processed.csv"},
		{"noext", ".csv", "noext_processed.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.name, tt.ext))
	}
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, MIMEZip, MIMEType("processed_files.zip"))
	assert.Equal(t, MIMECSV, MIMEType("a_processed.csv"))
	assert.Equal(t, MIMESpreadsheet, MIMEType("a_processed.xlsx"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, "XLSX": FormatSpreadsheet, "excel": FormatSpreadsheet} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExport_CSV(t *testing.T) {
	tbl := mustTable(t, "sales.xlsx", []string{"item", "qty"},
		[]string{"pen", "2"},
		[]string{"ink", ""},
		[]string{"pad", "1.5"},
	)

	art, err := Export("sales.xlsx", tbl, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "sales_processed.csv", art.Name)
	assert.Equal(t, MIMECSV, art.MIME)
	assert.Equal(t, "item,qty\npen,2\nink,\npad,1.5\n", string(art.Data))
}

func TestExport_SpreadsheetRoundTrip(t *testing.T) {
	tbl := mustTable(t, "sales.csv", []string{"item", "qty"},
		[]string{"pen", "2"},
		[]string{"ink", ""},
	)

	art, err := Export("sales.csv", tbl, FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, "sales_processed.xlsx", art.Name)
	assert.Equal(t, MIMESpreadsheet, art.MIME)

	back, _, err := Ingest(art.Name, art.Data)
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, back.Columns)
	assert.Equal(t, tbl.Records(), back.Records())
	assert.True(t, back.IsNumeric("qty"))
}

func TestExport_NoColumns(t *testing.T) {
	in := mustTable(t, "p.csv", []string{"a"}, []string{"1"}, []string{"2"}, []string{"3"})
	bare, err := SelectColumns(in, []string{})
	require.NoError(t, err)
	require.Equal(t, 3, bare.NumRows())

	art, err := Export("p.csv", bare, FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, art.Data)

	_, _, err = Ingest(art.Name, art.Data)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export("a.csv", table.New("a.csv", []string{"x"}), Format(7))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestArchiveEntryName(t *testing.T) {
	assert.Equal(t, "a_processed.csv", ArchiveEntryName("a.csv"))
	assert.Equal(t, "b_processed.xlsx", ArchiveEntryName("b.xlsx"))
	assert.Equal(t, "c_processed.csv", ArchiveEntryName("c"))
}

func TestBuildArchive(t *testing.T) {
	a := mustTable(t, "a.csv", []string{"x"}, []string{"1"}, []string{"2"})
	b := mustTable(t, "b.xlsx", []string{"y"}, []string{"hello"})

	art, err := BuildArchive([]Entry{{Name: "a.csv", Table: a}, {Name: "b.xlsx", Table: b}})
	require.NoError(t, err)
	assert.Equal(t, ArchiveName, art.Name)
	assert.Equal(t, MIMEZip, art.MIME)

	zr, err := zip.NewReader(bytes.NewReader(art.Data), int64(len(art.Data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	assert.Equal(t, "a_processed.csv", zr.File[0].Name)
	assert.Equal(t, "b_processed.xlsx", zr.File[1].Name)
	assert.Equal(t, zip.Deflate, zr.File[0].Method)

	for i, want := range []*table.Table{a, b} {
		rc, err := zr.File[i].Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		back, _, err := Ingest(zr.File[i].Name, data)
		require.NoError(t, err)
		assert.Equal(t, want.Records(), back.Records())
	}
}

func TestBuildArchive_Empty(t *testing.T) {
	art, err := BuildArchive(nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(art.Data), int64(len(art.Data)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}
