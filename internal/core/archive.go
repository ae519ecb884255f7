package core

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/JonMunkholm/sweeper/internal/table"
)

// ArchiveName is the download name of every batch archive.
const ArchiveName = "processed_files.zip"

// Entry pairs a stored file name with its current table.
type Entry struct {
	Name  string
	Table *table.Table
}

// ArchiveEntryName keeps the stored file's own extension:
// "sales.xlsx" -> "sales_processed.xlsx".
func ArchiveEntryName(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = FormatForName(name).Extension()
	}
	return OutputName(name, ext)
}

// BuildArchive serializes every entry, in order, into one deflated ZIP.
// Spreadsheet names are written as workbooks and everything else as CSV.
//
// The archive is all-or-nothing: the first entry that fails to serialize
// aborts the build and no partial archive is returned.
func BuildArchive(entries []Entry) (Artifact, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		data, err := Encode(e.Table, FormatForName(e.Name))
		if err != nil {
			return Artifact{}, fmt.Errorf("archive entry %s: %w", e.Name, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   ArchiveEntryName(e.Name),
			Method: zip.Deflate,
		})
		if err != nil {
			return Artifact{}, fmt.Errorf("archive entry %s: %w", e.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return Artifact{}, fmt.Errorf("archive entry %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return Artifact{}, fmt.Errorf("close archive: %w", err)
	}
	return Artifact{Name: ArchiveName, MIME: MIMEType(ArchiveName), Data: buf.Bytes()}, nil
}
