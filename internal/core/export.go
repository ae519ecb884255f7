package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/sweeper/internal/table"
	"github.com/xuri/excelize/v2"
)

// MIME types for downloads.
const (
	MIMECSV         = "text/csv"
	MIMEZip         = "application/zip"
	MIMESpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// processedSuffix is inserted before the extension of every output name.
const processedSuffix = "_processed"

// spreadsheetSheet is the worksheet name written to exported workbooks.
const spreadsheetSheet = "Sheet1"

// Format is an export serialization.
type Format int

const (
	FormatCSV Format = iota + 1
	FormatSpreadsheet
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatSpreadsheet {
		return ".xlsx"
	}
	return ".csv"
}

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatSpreadsheet:
		return "xlsx"
	default:
		return "unknown"
	}
}

// ParseFormat accepts "csv", or "xlsx"/"excel" for spreadsheets.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatSpreadsheet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForName picks the serialization for a stored file name: ".xlsx"
// files stay spreadsheets, everything else becomes CSV.
func FormatForName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatSpreadsheet
	}
	return FormatCSV
}

// Artifact is a serialized download.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

// OutputName returns "<stem>_processed<ext>" for the original name.
func OutputName(name, ext string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return stem + processedSuffix + ext
}

// MIMEType maps an output file name to its download MIME type.
func MIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		return MIMEZip
	case ".csv":
		return MIMECSV
	default:
		return MIMESpreadsheet
	}
}

// Export serializes t in the given format under a derived output name.
func Export(name string, t *table.Table, format Format) (Artifact, error) {
	data, err := Encode(t, format)
	if err != nil {
		return Artifact{}, fmt.Errorf("export %s: %w", name, err)
	}
	out := OutputName(name, format.Extension())
	return Artifact{Name: out, MIME: MIMEType(out), Data: data}, nil
}

// Encode serializes t without an index column.
func Encode(t *table.Table, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return EncodeCSV(t)
	case FormatSpreadsheet:
		return EncodeSpreadsheet(t)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

// EncodeCSV writes the header and rows; missing cells are empty fields.
// A table without columns has no CSV form and encodes as an empty file, so
// its row count does not survive a round trip.
func EncodeCSV(t *table.Table) ([]byte, error) {
	if t.NumColumns() == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeSpreadsheet writes a single-sheet workbook. Numbers are stored as
// numeric cells and missing cells are left blank.
func EncodeSpreadsheet(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c
	}
	if err := f.SetSheetRow(spreadsheetSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(row))
		for j, c := range row {
			values[j] = c.Value()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(spreadsheetSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
