package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// naTokens are raw values read as missing, mirroring common spreadsheet and
// dataframe conventions.
var naTokens = map[string]bool{
	"":       true,
	"NA":     true,
	"N/A":    true,
	"n/a":    true,
	"NaN":    true,
	"nan":    true,
	"-NaN":   true,
	"-nan":   true,
	"null":   true,
	"NULL":   true,
	"None":   true,
	"#N/A":   true,
	"#NA":    true,
	"<NA>":   true,
	"1.#IND": true,
}

// IsNAToken reports whether a raw field represents a missing value.
func IsNAToken(s string) bool {
	return naTokens[strings.TrimSpace(s)]
}

// parseNumber parses a raw field as a float. Infinities and NaN are rejected
// so they stay text.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseLiteral converts a user-entered literal to a cell, preferring a number
// when numeric is true and the literal parses as one.
func ParseLiteral(s string, numeric bool) Cell {
	if numeric {
		if v, ok := parseNumber(s); ok {
			return NumberCell(v)
		}
	}
	return TextCell(s)
}

// FromRecords builds a table from a header row and raw string rows.
//
// Header names are normalised: blanks become "Unnamed: <i>" and repeats are
// suffixed ".1", ".2", ... Short rows are padded with missing cells; rows
// wider than the header are rejected. Each column is typed independently: it
// is numeric when every non-missing field parses as a number, text otherwise.
func FromRecords(name string, header []string, rows [][]string) (*Table, error) {
	t := New(name, mangleHeader(header))
	width := len(t.Columns)

	numeric := make([]bool, width)
	for j := range numeric {
		numeric[j] = true
	}
	for i, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(row), width)
		}
		for j, raw := range row {
			if !numeric[j] || IsNAToken(raw) {
				continue
			}
			if _, ok := parseNumber(raw); !ok {
				numeric[j] = false
			}
		}
	}

	t.Rows = make([][]Cell, 0, len(rows))
	for _, row := range rows {
		cells := make([]Cell, width)
		for j := 0; j < width; j++ {
			if j >= len(row) || IsNAToken(row[j]) {
				continue
			}
			if numeric[j] {
				v, _ := parseNumber(row[j])
				cells[j] = NumberCell(v)
			} else {
				cells[j] = TextCell(row[j])
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func mangleHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	counts := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for seen[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
