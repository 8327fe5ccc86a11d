package profiling

import (
	"math/rand/v2"
	"testing"

	"godesign/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.InDelta(t, 1.5811, s.StdDev, 1e-4)
	assert.InDelta(t, 0, s.Skewness, 1e-9)
	assert.Zero(t, s.Outliers)

	_, err = Summarize(nil)
	assert.Error(t, err)
}

func TestSummarizeDetectsOutliersAndNormality(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	normal := distuv.Normal{Mu: 10, Sigma: 2, Src: src}
	data := make([]float64, 2000)
	for i := range data {
		data[i] = normal.Rand()
	}
	s, err := Summarize(data)
	require.NoError(t, err)
	assert.InDelta(t, 10, s.Mean, 0.2)
	assert.Greater(t, s.NormalP, 0.001)

	skewed := append([]float64{}, data...)
	for i := 0; i < 200; i++ {
		skewed = append(skewed, 1000)
	}
	s, err = Summarize(skewed)
	require.NoError(t, err)
	assert.False(t, s.IsNormal)
	assert.GreaterOrEqual(t, s.Outliers, 200)
}

func TestProfileTable(t *testing.T) {
	tbl := table.MustFromColumns(
		table.NewColumn("Y", []any{1.0, 2.0, nil, 4.0}),
		table.NewColumn("T", []any{true, false, true, true}),
		table.NewColumn("arm", []any{"a", "b", "a", nil}),
		table.NewColumn("blank", []any{nil, nil, nil, nil}),
	)

	p := NewDataProfiler().ProfileTable(tbl)
	require.Len(t, p.Columns, 4)
	assert.Equal(t, 4, p.Rows)

	y := p.Columns[0]
	assert.Equal(t, KindNumeric, y.Kind)
	assert.Equal(t, 1, y.Missing)
	require.NotNil(t, y.Summary)
	assert.InDelta(t, 7.0/3, y.Summary.Mean, 1e-9)

	assert.Equal(t, KindBoolean, p.Columns[1].Kind)
	assert.Equal(t, []Level{{"true", 3}, {"false", 1}}, p.Columns[1].Levels)

	arm := p.Columns[2]
	assert.Equal(t, KindCategorical, arm.Kind)
	assert.Equal(t, []Level{{"a", 2}, {"b", 1}}, arm.Levels)

	assert.Equal(t, KindEmpty, p.Columns[3].Kind)
}

func TestReports(t *testing.T) {
	tbl := table.MustFromColumns(
		table.NewColumn("Y", []any{1.0, 2.0, 3.0}),
		table.NewColumn("arm", []any{"a", "b", "a"}),
	)
	p := NewDataProfiler().ProfileTable(tbl)

	md := p.Markdown("tutoring")
	assert.Contains(t, md, "# tutoring")
	assert.Contains(t, md, "3 rows, 2 columns")
	assert.Contains(t, md, "| Y | 0 | 2 | 1 | 1 | 2 | 3 | 0 |")
	assert.Contains(t, md, "a (2), b (1)")

	page := string(p.HTML("tutoring"))
	assert.Contains(t, page, "<title>tutoring</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>Y</td>")
}
