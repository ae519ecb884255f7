package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sweeper/internal/table"
)

func dupTable(t *testing.T) *table.Table {
	return mustTable(t, "d.csv", []string{"A", "B"},
		[]string{"1", "x"},
		[]string{"1", "y"},
		[]string{"2", "z"},
	)
}

func TestApplyDuplicatePolicy_DropRow(t *testing.T) {
	in := dupTable(t)

	out, report, err := ApplyDuplicatePolicy(in, []string{"A"}, DropRow)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, column(t, out, "A"))
	assert.Equal(t, []string{"x", "z"}, column(t, out, "B"))
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 3, report.RowsBefore)
	assert.Equal(t, 2, report.RowsAfter)

	assert.Equal(t, 3, in.NumRows(), "input must not change")
}

func TestApplyDuplicatePolicy_ReplaceWithMissing(t *testing.T) {
	out, report, err := ApplyDuplicatePolicy(dupTable(t), []string{"A"}, ReplaceWithMissing)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "", "2"}, column(t, out, "A"))
	assert.True(t, out.Rows[1][0].IsMissing())
	assert.Equal(t, []string{"x", "y", "z"}, column(t, out, "B"))
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 3, report.RowsAfter)
}

func TestApplyDuplicatePolicy_MultiColumnKey(t *testing.T) {
	in := mustTable(t, "d.csv", []string{"A", "B"},
		[]string{"1", "x"},
		[]string{"1", "y"},
		[]string{"1", "x"},
	)
	out, report, err := ApplyDuplicatePolicy(in, []string{"A", "B"}, DropRow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, []string{"x", "y"}, column(t, out, "B"))
}

func TestApplyDuplicatePolicy_MissingEqualsMissing(t *testing.T) {
	in := mustTable(t, "d.csv", []string{"A"}, []string{""}, []string{""}, []string{"3"})
	out, _, err := ApplyDuplicatePolicy(in, []string{"A"}, DropRow)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
}

func TestApplyDuplicatePolicy_Errors(t *testing.T) {
	in := dupTable(t)

	_, _, err := ApplyDuplicatePolicy(in, nil, DropRow)
	assert.ErrorIs(t, err, ErrNoColumnsSelected)

	_, _, err = ApplyDuplicatePolicy(in, []string{"C"}, DropRow)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, _, err = ApplyDuplicatePolicy(in, []string{"A"}, DuplicateBehavior(9))
	assert.ErrorIs(t, err, ErrUnknownBehavior)
}

func TestParseDuplicateBehavior(t *testing.T) {
	for in, want := range map[string]DuplicateBehavior{
		"replace":              ReplaceWithMissing,
		"REPLACE_WITH_MISSING": ReplaceWithMissing,
		"drop":                 DropRow,
		"drop_row":             DropRow,
	} {
		got, err := ParseDuplicateBehavior(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDuplicateBehavior("merge")
	assert.ErrorIs(t, err, ErrUnknownBehavior)
}

func sparseTable(t *testing.T) *table.Table {
	// full: 0% missing, half: 50%, most: 90%, all: 100%
	rows := make([][]string, 10)
	for i := range rows {
		half, most := "", ""
		if i < 5 {
			half = "h"
		}
		if i == 0 {
			most = "m"
		}
		rows[i] = []string{"f", half, most, ""}
	}
	return mustTable(t, "s.csv", []string{"full", "half", "most", "all"}, rows...)
}

func TestDropSparseColumns(t *testing.T) {
	tests := []struct {
		threshold float64
		dropped   []string
		kept      []string
	}{
		{90, []string{"all"}, []string{"full", "half", "most"}},
		{89, []string{"most", "all"}, []string{"full", "half"}},
		{50, []string{"most", "all"}, []string{"full", "half"}},
		{49, []string{"half", "most", "all"}, []string{"full"}},
		{100, nil, []string{"full", "half", "most", "all"}},
		{0, []string{"half", "most", "all"}, []string{"full"}},
	}
	for _, tt := range tests {
		out, dropped, err := DropSparseColumns(sparseTable(t), tt.threshold)
		require.NoError(t, err)
		assert.Equal(t, tt.dropped, dropped, "threshold %v", tt.threshold)
		assert.Equal(t, tt.kept, out.Columns, "threshold %v", tt.threshold)
		assert.Equal(t, 10, out.NumRows())
	}
}

func TestDropSparseColumns_NoRows(t *testing.T) {
	in := table.New("e.csv", []string{"a", "b"})
	out, dropped, err := DropSparseColumns(in, 0)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, []string{"a", "b"}, out.Columns)
}

func TestDropSparseColumns_InvalidThreshold(t *testing.T) {
	for _, v := range []float64{-1, 100.5} {
		_, _, err := DropSparseColumns(sparseTable(t), v)
		assert.ErrorIs(t, err, ErrInvalidThreshold, "threshold %v", v)
	}
}

func TestFillMissing_Mean(t *testing.T) {
	in := mustTable(t, "f.csv", []string{"n"}, []string{"1"}, []string{"2"}, []string{""}, []string{"3"})

	out, report, err := FillMissing(in, []string{"n"}, FillMean, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "2", "3"}, column(t, out, "n"))
	assert.Equal(t, table.Number, out.Rows[2][0].Kind)
	assert.Equal(t, 1, report.Filled())
	assert.Equal(t, "2", report.Columns[0].Value)
	assert.True(t, in.Rows[2][0].IsMissing(), "input must not change")
}

func TestFillMissing_Median(t *testing.T) {
	in := mustTable(t, "f.csv", []string{"n"}, []string{"1"}, []string{"10"}, []string{""}, []string{"4"}, []string{"2"})
	out, _, err := FillMissing(in, []string{"n"}, FillMedian, "")
	require.NoError(t, err)
	assert.Equal(t, "3", out.Rows[2][0].String())
}

func TestFillMissing_Mode(t *testing.T) {
	in := mustTable(t, "f.csv", []string{"c", "n"},
		[]string{"b", "5"},
		[]string{"a", "5"},
		[]string{"b", "7"},
		[]string{"", ""},
		[]string{"a", "7"},
	)
	out, report, err := FillMissing(in, []string{"c", "n"}, FillMode, "")
	require.NoError(t, err)

	// Ties resolve to the smallest value.
	assert.Equal(t, "a", out.Rows[3][0].String())
	assert.Equal(t, "5", out.Rows[3][1].String())
	assert.Equal(t, 2, report.Filled())
}

func TestFillMissing_Custom(t *testing.T) {
	in := mustTable(t, "f.csv", []string{"n", "s"}, []string{"1", "x"}, []string{"", ""})

	out, _, err := FillMissing(in, []string{"n", "s"}, FillCustom, "0")
	require.NoError(t, err)
	assert.Equal(t, table.Number, out.Rows[1][0].Kind)
	assert.Equal(t, table.Text, out.Rows[1][1].Kind)
	assert.Equal(t, "0", out.Rows[1][1].String())

	out, _, err = FillMissing(in, []string{"n"}, FillCustom, "unknown")
	require.NoError(t, err)
	assert.Equal(t, table.Text, out.Rows[1][0].Kind)
	assert.Equal(t, "unknown", out.Rows[1][0].String())
}

func TestFillMissing_AllMissingColumnUnchanged(t *testing.T) {
	in := mustTable(t, "f.csv", []string{"n"}, []string{""}, []string{""})
	for _, m := range []FillMethod{FillMean, FillMedian, FillMode} {
		out, report, err := FillMissing(in, []string{"n"}, m, "")
		require.NoError(t, err, m.String())
		assert.Equal(t, 2, out.MissingCount(0), m.String())
		assert.Zero(t, report.Filled(), m.String())
	}
}

func TestFillMissing_Errors(t *testing.T) {
	in := mustTable(t, "f.csv", []string{"n", "s"}, []string{"1", "x"}, []string{"", ""})

	tests := []struct {
		name    string
		columns []string
		method  FillMethod
		custom  string
		want    error
	}{
		{"no columns", nil, FillMean, "", ErrNoColumnsSelected},
		{"unknown column", []string{"zz"}, FillMode, "", ErrColumnNotFound},
		{"mean on text", []string{"n", "s"}, FillMean, "", ErrNonNumericColumn},
		{"median on text", []string{"s"}, FillMedian, "", ErrNonNumericColumn},
		{"empty custom", []string{"n"}, FillCustom, "", ErrEmptyCustomValue},
		{"unknown method", []string{"n"}, FillMethod(0), "", ErrUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := FillMissing(in, tt.columns, tt.method, tt.custom)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, out)
		})
	}
	assert.True(t, in.Rows[1][0].IsMissing(), "refused fill must not touch the input")
}

func TestParseFillMethod(t *testing.T) {
	for in, want := range map[string]FillMethod{
		"mean": FillMean, "Median": FillMedian, "MODE": FillMode, "custom value": FillCustom,
	} {
		got, err := ParseFillMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFillMethod("interpolate")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSelectColumns(t *testing.T) {
	in := mustTable(t, "p.csv", []string{"a", "b", "c"}, []string{"1", "2", "3"}, []string{"4", "5", "6"})

	out, err := SelectColumns(in, []string{"c", "a", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, out.Columns)
	assert.Equal(t, []string{"3", "6"}, column(t, out, "c"))
	assert.Equal(t, []string{"a", "b", "c"}, in.Columns)

	all, err := SelectColumns(in, nil)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, all.Columns)
	assert.Equal(t, 2, all.NumRows())

	empty, err := SelectColumns(in, []string{})
	require.NoError(t, err)
	assert.Zero(t, empty.NumColumns())
	assert.Equal(t, 2, empty.NumRows())

	_, err = SelectColumns(in, []string{"a", "nope"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
