package core

import (
	"fmt"

	"github.com/JonMunkholm/sweeper/internal/table"
)

// SelectColumns returns a table restricted to columns, in the order given.
// Repeated names are kept once. A nil selection keeps every column. An empty
// non-nil selection is allowed and yields a table with no columns but the
// original row count.
func SelectColumns(t *table.Table, columns []string) (*table.Table, error) {
	if columns == nil {
		return t.Clone(), nil
	}
	var names []string
	var idx []int
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if seen[name] {
			continue
		}
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		seen[name] = true
		names = append(names, name)
		idx = append(idx, j)
	}

	out := table.New(t.Name, names)
	out.Rows = make([][]table.Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]table.Cell, len(idx))
		for k, j := range idx {
			cells[k] = row[j]
		}
		out.Rows[i] = cells
	}
	return out, nil
}
