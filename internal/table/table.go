// Package table defines the in-memory tabular model that every cleaning,
// projection and export step operates on.
//
// A Table is row-major: Rows[i][j] is the cell of row i in column Columns[j].
// Row-major storage keeps the row count meaningful even when every column has
// been projected away.
package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies what a Cell holds.
type Kind uint8

const (
	// Missing is the absent-value marker.
	Missing Kind = iota
	Number
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "missing"
	}
}

// Cell is a single typed value. The zero Cell is missing.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
}

// NumberCell returns a numeric cell. NaN is normalised to missing.
func NumberCell(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{Kind: Number, Num: v}
}

// TextCell returns a text cell.
func TextCell(s string) Cell {
	return Cell{Kind: Text, Str: s}
}

// MissingCell returns the missing marker.
func MissingCell() Cell {
	return Cell{}
}

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool {
	return c.Kind == Missing
}

// String renders the cell the way it is written to CSV. Missing cells render
// as the empty string.
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return FormatNumber(c.Num)
	case Text:
		return c.Str
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value: float64, string or nil.
func (c Cell) Value() any {
	switch c.Kind {
	case Number:
		return c.Num
	case Text:
		return c.Str
	default:
		return nil
	}
}

// Equal compares kind and payload. Two missing cells are equal.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case Number:
		return c.Num == o.Num
	case Text:
		return c.Str == o.Str
	default:
		return true
	}
}

// FormatNumber uses the shortest decimal form that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is a named, ordered set of columns over row-major cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// New creates an empty table with the given columns.
func New(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// AppendRow adds a row. The row must have one cell per column.
func (t *Table) AppendRow(cells []Cell) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the cells in the named column.
func (t *Table) Column(name string) ([]Cell, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// IsNumeric reports whether every non-missing cell of the column is a number.
// An all-missing column counts as numeric.
func (t *Table) IsNumeric(name string) bool {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return false
	}
	for _, row := range t.Rows {
		if row[idx].Kind == Text {
			return false
		}
	}
	return true
}

// NumericColumns lists the numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if t.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

// MissingCount returns the number of missing cells in the column at idx.
func (t *Table) MissingCount(idx int) int {
	n := 0
	for _, row := range t.Rows {
		if row[idx].IsMissing() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Cell, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// Head returns a copy holding at most n leading rows. n <= 0 returns every row.
func (t *Table) Head(n int) *Table {
	out := t.Clone()
	if n > 0 && n < len(out.Rows) {
		out.Rows = out.Rows[:n]
	}
	return out
}

// Records renders the header followed by every row as strings.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Columns))
	copy(header, t.Columns)
	out = append(out, header)
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for j, c := range row {
			rec[j] = c.String()
		}
		out = append(out, rec)
	}
	return out
}
