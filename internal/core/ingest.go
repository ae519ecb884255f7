package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/sweeper/internal/table"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Source encodings reported in IngestInfo.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// utf8BOM is stripped from the start of CSV input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errNotUTF8 = errors.New("input is not valid utf-8")

// IngestInfo describes how an uploaded file was read.
type IngestInfo struct {
	Format   string // "csv" or "xlsx"
	Encoding string // source text encoding; empty for spreadsheets
	Size     int    // raw upload size in bytes
}

// Ingest parses an uploaded file into a table. The extension of name picks
// the reader: ".csv" or ".xlsx", case-insensitively.
//
// CSV input is decoded as UTF-8 first. When the bytes are not valid UTF-8 the
// read is retried once as ISO-8859-1. Any other read failure is returned as is.
func Ingest(name string, data []byte) (*table.Table, IngestInfo, error) {
	info := IngestInfo{Size: len(data)}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		info.Format = "csv"
		t, enc, err := ingestCSV(name, data)
		info.Encoding = enc
		return t, info, err
	case ".xlsx":
		info.Format = "xlsx"
		t, err := ingestSpreadsheet(name, data)
		return t, info, err
	default:
		return nil, info, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func ingestCSV(name string, data []byte) (*table.Table, string, error) {
	text, err := decodeUTF8(data)
	if err == nil {
		t, err := parseCSV(name, text)
		return t, EncodingUTF8, err
	}

	text, err = decodeLatin1(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrEncoding, name, err)
	}
	t, err := parseCSV(name, text)
	return t, EncodingLatin1, err
}

func decodeUTF8(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	return string(data), nil
}

func decodeLatin1(data []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseCSV(name, text string) (*table.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCSV, name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrEmptyFile, name)
	}

	t, err := table.FromRecords(name, records[0], records[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCSV, name, err)
	}
	return t, nil
}

// ingestSpreadsheet reads the first worksheet. Rows come back with trailing
// blanks trimmed, so the header is widened to the widest row.
func ingestSpreadsheet(name string, data []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSpreadsheet, name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no worksheets", ErrEmptyFile, name)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSpreadsheet, name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrEmptyFile, name)
	}

	header := rows[0]
	width := len(header)
	for _, row := range rows[1:] {
		if len(row) > width {
			width = len(row)
		}
	}
	for len(header) < width {
		header = append(header, "")
	}

	t, err := table.FromRecords(name, header, rows[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSpreadsheet, name, err)
	}
	return t, nil
}
