package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tbl := mustTable(t, "d.csv", []string{"n", "s", "empty", "one"},
		[]string{"1", "a", "", "5"},
		[]string{"2", "b", "", ""},
		[]string{"3", "", "", ""},
		[]string{"4", "c", "", ""},
		[]string{"", "d", "", ""},
	)

	got := Describe(tbl)
	require.Len(t, got, 4)

	n := got[0]
	assert.Equal(t, "n", n.Column)
	assert.True(t, n.Numeric)
	assert.Equal(t, 4, n.Count)
	assert.Equal(t, 1, n.Missing)
	require.NotNil(t, n.Stats)
	assert.InDelta(t, 2.5, n.Stats.Mean, 1e-9)
	assert.InDelta(t, 1, n.Stats.Min, 1e-9)
	assert.InDelta(t, 4, n.Stats.Max, 1e-9)
	assert.InDelta(t, 2.5, n.Stats.Median, 1e-9)
	require.NotNil(t, n.Stats.Std)
	assert.InDelta(t, 1.2909944, *n.Stats.Std, 1e-6)
	assert.InDelta(t, 1.75, n.Stats.Q25, 1e-9)
	assert.InDelta(t, 3.25, n.Stats.Q75, 1e-9)

	s := got[1]
	assert.False(t, s.Numeric)
	assert.Equal(t, 4, s.Count)
	assert.Nil(t, s.Stats)

	empty := got[2]
	assert.True(t, empty.Numeric)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.Stats)

	one := got[3]
	require.NotNil(t, one.Stats)
	assert.Nil(t, one.Stats.Std, "std needs two values")
	assert.InDelta(t, 5, one.Stats.Mean, 1e-9)
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"single value", []float64{7}, 0.25, 7},
		{"lower quartile", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"upper quartile", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"exact rank", []float64{1, 2, 3, 4, 5}, 0.25, 2},
		{"uneven gaps", []float64{0, 10, 100}, 0.75, 55},
		{"minimum", []float64{3, 9}, 0, 3},
		{"maximum", []float64{3, 9}, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantile(tt.sorted, tt.p), 1e-9)
		})
	}
}
