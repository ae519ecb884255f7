package core

// cleaning.go implements the per-file cleaning policies.
//
// Every function here is pure: it validates its inputs, works on a clone of
// the table and returns the clone. On a validation error nothing is
// returned, so the caller has nothing to write back.

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sweeper/internal/table"
	"github.com/montanaflynn/stats"
)

// DefaultMissingThreshold is the default percentage for DropSparseColumns.
const DefaultMissingThreshold = 90

// DuplicateBehavior selects what happens to rows repeating an earlier key.
type DuplicateBehavior int

const (
	// ReplaceWithMissing blanks the key columns of repeated rows.
	ReplaceWithMissing DuplicateBehavior = iota + 1
	// DropRow removes repeated rows entirely.
	DropRow
)

func (b DuplicateBehavior) String() string {
	switch b {
	case ReplaceWithMissing:
		return "replace"
	case DropRow:
		return "drop"
	default:
		return "unknown"
	}
}

// ParseDuplicateBehavior accepts "replace" or "drop" (and their long forms).
func ParseDuplicateBehavior(s string) (DuplicateBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace", "replace_with_missing", "missing":
		return ReplaceWithMissing, nil
	case "drop", "drop_row", "remove":
		return DropRow, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBehavior, s)
	}
}

// DuplicateReport summarises one ApplyDuplicatePolicy call.
type DuplicateReport struct {
	Columns    []string          `json:"columns"`
	Behavior   DuplicateBehavior `json:"-"`
	Duplicates int               `json:"duplicates"`
	RowsBefore int               `json:"rows_before"`
	RowsAfter  int               `json:"rows_after"`
}

// ApplyDuplicatePolicy resolves rows whose values in columns repeat an
// earlier row. The first occurrence of every key is kept unchanged. Missing
// cells compare equal to each other.
func ApplyDuplicatePolicy(t *table.Table, columns []string, behavior DuplicateBehavior) (*table.Table, DuplicateReport, error) {
	idx, err := resolveColumns(t, columns)
	if err != nil {
		return nil, DuplicateReport{}, err
	}
	if behavior != ReplaceWithMissing && behavior != DropRow {
		return nil, DuplicateReport{}, fmt.Errorf("%w: %d", ErrUnknownBehavior, behavior)
	}

	out := t.Clone()
	report := DuplicateReport{
		Columns:    columns,
		Behavior:   behavior,
		RowsBefore: t.NumRows(),
	}

	seen := make(map[string]struct{}, len(out.Rows))
	kept := out.Rows[:0]
	for _, row := range out.Rows {
		key := rowKey(row, idx)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			kept = append(kept, row)
			continue
		}

		report.Duplicates++
		if behavior == ReplaceWithMissing {
			for _, j := range idx {
				row[j] = table.MissingCell()
			}
			kept = append(kept, row)
		}
	}
	out.Rows = kept
	report.RowsAfter = out.NumRows()

	return out, report, nil
}

// rowKey encodes the selected cells of a row. The kind byte keeps the number
// 1 distinct from the text "1".
func rowKey(row []table.Cell, idx []int) string {
	var b strings.Builder
	for _, j := range idx {
		c := row[j]
		b.WriteByte(byte('0' + c.Kind))
		switch c.Kind {
		case table.Number:
			b.WriteString(strconv.FormatFloat(c.Num, 'g', -1, 64))
		case table.Text:
			b.WriteString(c.Str)
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// DropSparseColumns drops every column whose fraction of missing cells is
// strictly greater than thresholdPercent/100. A table without rows loses no
// columns. The dropped column names are returned in table order.
func DropSparseColumns(t *table.Table, thresholdPercent float64) (*table.Table, []string, error) {
	if math.IsNaN(thresholdPercent) || thresholdPercent < 0 || thresholdPercent > 100 {
		return nil, nil, fmt.Errorf("%w: %v (want 0-100)", ErrInvalidThreshold, thresholdPercent)
	}

	rows := t.NumRows()
	var keep, dropped []string
	for j, name := range t.Columns {
		if rows > 0 {
			fraction := float64(t.MissingCount(j)) / float64(rows)
			if fraction > thresholdPercent/100 {
				dropped = append(dropped, name)
				continue
			}
		}
		keep = append(keep, name)
	}

	if len(dropped) == 0 {
		return t.Clone(), nil, nil
	}
	out, err := SelectColumns(t, keep)
	if err != nil {
		return nil, nil, err
	}
	return out, dropped, nil
}

// FillMethod selects how FillMissing derives the replacement value.
type FillMethod int

const (
	FillMean FillMethod = iota + 1
	FillMedian
	FillMode
	FillCustom
)

func (m FillMethod) String() string {
	switch m {
	case FillMean:
		return "mean"
	case FillMedian:
		return "median"
	case FillMode:
		return "mode"
	case FillCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseFillMethod accepts mean, median, mode or custom.
func ParseFillMethod(s string) (FillMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return FillMean, nil
	case "median":
		return FillMedian, nil
	case "mode":
		return FillMode, nil
	case "custom", "custom value":
		return FillCustom, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// ColumnFill records what FillMissing did to one column.
type ColumnFill struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Filled int    `json:"filled"`
}

// FillReport summarises one FillMissing call.
type FillReport struct {
	Method  FillMethod   `json:"-"`
	Columns []ColumnFill `json:"columns"`
}

// Filled returns the total number of replaced cells.
func (r FillReport) Filled() int {
	n := 0
	for _, c := range r.Columns {
		n += c.Filled
	}
	return n
}

// FillMissing replaces the missing cells of each listed column independently.
//
// Mean and Median require numeric columns; any non-numeric column refuses
// the whole call. Mode uses the most frequent non-missing value, breaking
// ties toward the smallest value. Custom requires a non-empty literal, stored
// as a number when the column is numeric and the literal parses as one.
// A column with no values to derive from is left unchanged.
func FillMissing(t *table.Table, columns []string, method FillMethod, custom string) (*table.Table, FillReport, error) {
	idx, err := resolveColumns(t, columns)
	if err != nil {
		return nil, FillReport{}, err
	}

	switch method {
	case FillMean, FillMedian:
		for _, name := range columns {
			if !t.IsNumeric(name) {
				return nil, FillReport{}, fmt.Errorf("%w: %q", ErrNonNumericColumn, name)
			}
		}
	case FillMode:
	case FillCustom:
		if custom == "" {
			return nil, FillReport{}, ErrEmptyCustomValue
		}
	default:
		return nil, FillReport{}, fmt.Errorf("%w: %d", ErrUnknownMethod, method)
	}

	out := t.Clone()
	report := FillReport{Method: method}
	for k, j := range idx {
		name := columns[k]
		value, ok := fillValue(t, name, method, custom)
		cf := ColumnFill{Column: name}
		if ok {
			cf.Value = value.String()
			for _, row := range out.Rows {
				if row[j].IsMissing() {
					row[j] = value
					cf.Filled++
				}
			}
		}
		report.Columns = append(report.Columns, cf)
	}
	return out, report, nil
}

func fillValue(t *table.Table, name string, method FillMethod, custom string) (table.Cell, bool) {
	cells, _ := t.Column(name)

	switch method {
	case FillCustom:
		return table.ParseLiteral(custom, t.IsNumeric(name)), true
	case FillMode:
		return modeOf(cells)
	}

	values := make(stats.Float64Data, 0, len(cells))
	for _, c := range cells {
		if c.Kind == table.Number {
			values = append(values, c.Num)
		}
	}
	if len(values) == 0 {
		return table.Cell{}, false
	}

	var (
		v   float64
		err error
	)
	if method == FillMean {
		v, err = stats.Mean(values)
	} else {
		v, err = stats.Median(values)
	}
	if err != nil {
		return table.Cell{}, false
	}
	return table.NumberCell(v), true
}

// modeOf returns the most frequent non-missing cell. Ties go to the smallest
// value: numbers before text, numbers ascending, text lexicographically.
func modeOf(cells []table.Cell) (table.Cell, bool) {
	counts := make(map[table.Cell]int)
	for _, c := range cells {
		if !c.IsMissing() {
			counts[c]++
		}
	}
	if len(counts) == 0 {
		return table.Cell{}, false
	}

	candidates := make([]table.Cell, 0, len(counts))
	best := 0
	for c, n := range counts {
		switch {
		case n > best:
			best = n
			candidates = append(candidates[:0], c)
		case n == best:
			candidates = append(candidates, c)
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		return cellLess(candidates[a], candidates[b])
	})
	return candidates[0], true
}

func cellLess(a, b table.Cell) bool {
	if a.Kind != b.Kind {
		return a.Kind == table.Number
	}
	if a.Kind == table.Number {
		return a.Num < b.Num
	}
	return a.Str < b.Str
}

// resolveColumns maps names to column positions. At least one name is
// required and every name must exist.
func resolveColumns(t *table.Table, columns []string) ([]int, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumnsSelected
	}
	idx := make([]int, len(columns))
	for k, name := range columns {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		idx[k] = j
	}
	return idx, nil
}
