// Package chart renders numeric table columns as standalone HTML charts.
//
// Charts never modify the table. Every failure is returned as one of the
// package errors so the caller can show it as a message.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/JonMunkholm/sweeper/internal/table"
)

var (
	ErrNoNumericColumns = errors.New("chart: no numeric columns found")
	ErrNoChartColumns   = errors.New("chart: no columns selected")
	ErrNotNumeric       = errors.New("chart: column is not numeric")
	ErrScatterAxes      = errors.New("chart: scatter needs an x and a y column")
	ErrUnknownChart     = errors.New("chart: unknown chart type")
	ErrColumnNotFound   = errors.New("chart: column not found")
)

// Kind is a chart type.
type Kind int

const (
	Bar Kind = iota + 1
	Line
	Scatter
)

func (k Kind) String() string {
	switch k {
	case Bar:
		return "bar"
	case Line:
		return "line"
	case Scatter:
		return "scatter"
	default:
		return "unknown"
	}
}

// ParseKind accepts "bar", "line" or "scatter" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar":
		return Bar, nil
	case "line":
		return Line, nil
	case "scatter":
		return Scatter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownChart, s)
	}
}

// Request selects what to plot. Bar and Line use Columns with the row
// index on the x axis; Scatter uses X and Y.
type Request struct {
	Kind    Kind
	Columns []string
	X       string
	Y       string
}

const (
	chartWidth  = "900px"
	chartHeight = "500px"
)

// Render draws t according to req and returns a complete HTML page.
func Render(t *table.Table, req Request) ([]byte, error) {
	if len(t.NumericColumns()) == 0 {
		return nil, ErrNoNumericColumns
	}

	var buf bytes.Buffer
	var err error
	switch req.Kind {
	case Bar:
		err = renderBar(&buf, t, req.Columns)
	case Line:
		err = renderLine(&buf, t, req.Columns)
	case Scatter:
		err = renderScatter(&buf, t, req.X, req.Y)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownChart, req.Kind)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func globalOpts(t *table.Table, kind Kind) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: t.Name + " " + kind.String() + " chart",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: t.Name}),
	}
}

func renderBar(buf *bytes.Buffer, t *table.Table, columns []string) error {
	idx, err := numericIndexes(t, columns)
	if err != nil {
		return err
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts(t, Bar)...)
	bar.SetXAxis(rowLabels(t))
	for k, j := range idx {
		data := make([]opts.BarData, t.NumRows())
		for i, row := range t.Rows {
			data[i] = opts.BarData{Value: cellValue(row[j])}
		}
		bar.AddSeries(columns[k], data)
	}
	return bar.Render(buf)
}

func renderLine(buf *bytes.Buffer, t *table.Table, columns []string) error {
	idx, err := numericIndexes(t, columns)
	if err != nil {
		return err
	}
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(t, Line)...)
	line.SetXAxis(rowLabels(t))
	for k, j := range idx {
		data := make([]opts.LineData, t.NumRows())
		for i, row := range t.Rows {
			data[i] = opts.LineData{Value: cellValue(row[j])}
		}
		line.AddSeries(columns[k], data)
	}
	return line.Render(buf)
}

// renderScatter plots one point per row where both x and y are present.
func renderScatter(buf *bytes.Buffer, t *table.Table, x, y string) error {
	if x == "" || y == "" {
		return ErrScatterAxes
	}
	idx, err := numericIndexes(t, []string{x, y})
	if err != nil {
		return err
	}
	xi, yi := idx[0], idx[1]

	data := make([]opts.ScatterData, 0, t.NumRows())
	for _, row := range t.Rows {
		if row[xi].IsMissing() || row[yi].IsMissing() {
			continue
		}
		data = append(data, opts.ScatterData{Value: []float64{row[xi].Num, row[yi].Num}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(globalOpts(t, Scatter),
		charts.WithXAxisOpts(opts.XAxis{Name: x, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: y, Type: "value"}),
	)...)
	scatter.AddSeries(x+" vs "+y, data)
	return scatter.Render(buf)
}

// numericIndexes resolves columns, all of which must be numeric.
func numericIndexes(t *table.Table, columns []string) ([]int, error) {
	if len(columns) == 0 {
		return nil, ErrNoChartColumns
	}
	idx := make([]int, len(columns))
	for k, name := range columns {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		if !t.IsNumeric(name) {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
		}
		idx[k] = j
	}
	return idx, nil
}

func rowLabels(t *table.Table) []string {
	labels := make([]string, t.NumRows())
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// cellValue returns nil for missing cells so the series shows a gap.
func cellValue(c table.Cell) interface{} {
	if c.IsMissing() {
		return nil
	}
	return c.Num
}
