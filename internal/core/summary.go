package core

import (
	"math"
	"sort"

	"github.com/JonMunkholm/sweeper/internal/table"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Preview row counts offered by the UI.
const (
	PreviewHead     = 5
	PreviewHundred  = 100
	PreviewFullData = 0
)

// NumericStats are the describe statistics of one numeric column.
type NumericStats struct {
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std,omitempty"` // nil with fewer than two values
	Min    float64  `json:"min"`
	Q25    float64  `json:"q25"`
	Median float64  `json:"median"`
	Q75    float64  `json:"q75"`
	Max    float64  `json:"max"`
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Column  string        `json:"column"`
	Numeric bool          `json:"numeric"`
	Count   int           `json:"count"`
	Missing int           `json:"missing"`
	Stats   *NumericStats `json:"stats,omitempty"`
}

// Describe summarises every column. Numeric columns with at least one value
// also get NumericStats; quartiles interpolate linearly between the closest
// ranks, at position (n-1)p of the sorted values.
func Describe(t *table.Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, t.NumColumns())
	for j, name := range t.Columns {
		missing := t.MissingCount(j)
		cs := ColumnSummary{
			Column:  name,
			Numeric: t.IsNumeric(name),
			Count:   t.NumRows() - missing,
			Missing: missing,
		}
		if cs.Numeric && cs.Count > 0 {
			cs.Stats = numericStats(t, j)
		}
		out = append(out, cs)
	}
	return out
}

func numericStats(t *table.Table, j int) *NumericStats {
	x := make([]float64, 0, t.NumRows())
	for _, row := range t.Rows {
		if row[j].Kind == table.Number {
			x = append(x, row[j].Num)
		}
	}
	sort.Float64s(x)

	median, _ := stats.Median(x)
	ns := &NumericStats{
		Mean:   stat.Mean(x, nil),
		Min:    floats.Min(x),
		Q25:    quantile(x, 0.25),
		Median: median,
		Q75:    quantile(x, 0.75),
		Max:    floats.Max(x),
	}
	if len(x) > 1 {
		sd := stat.StdDev(x, nil)
		ns.Std = &sd
	}
	return ns
}

// quantile interpolates between the order statistics around (n-1)p.
// sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}
