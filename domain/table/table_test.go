package table

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Table {
	return MustFromColumns(
		Column{Name: "A", Values: []any{1.0, 2.0, 3.0}, Index: []int{10, 11, 12}},
		Column{Name: "B", Values: []any{"x", "y", "z"}, Index: []int{10, 11, 12}},
	)
}

func TestFromColumnsKeepsOrderAndIndex(t *testing.T) {
	tbl := fixture()

	assert.Equal(t, 3, tbl.NRows())
	assert.Equal(t, []string{"A", "B"}, tbl.Columns())
	assert.Equal(t, []int{10, 11, 12}, tbl.Index())
}

func TestCopyIsDeep(t *testing.T) {
	orig := fixture()
	cp := orig.Copy()

	require.NoError(t, orig.SetColumn(Column{Name: "A", Values: []any{9.0, 9.0, 9.0}}))
	require.NoError(t, orig.SetColumn(Column{Name: "C", Values: []any{true, false, true}}))

	col, ok := cp.Column("A")
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, col.Values)
	assert.False(t, cp.HasColumn("C"))
}

func TestSetColumnOverwritesInPlace(t *testing.T) {
	tbl := fixture()
	require.NoError(t, tbl.SetColumn(Column{Name: "A", Values: []any{4.0, 5.0, 6.0}}))

	assert.Equal(t, []string{"A", "B"}, tbl.Columns())
	assert.Equal(t, 5.0, tbl.Value("A", 1))
}

func TestSetColumnRejectsWrongLength(t *testing.T) {
	tbl := fixture()
	err := tbl.SetColumn(Column{Name: "C", Values: []any{1}})
	assert.Error(t, err)
}

func TestConcatAlignsByIndexLabel(t *testing.T) {
	tbl := fixture()
	col := Column{Name: "C", Values: []any{"c12", "c10", "c11"}, Index: []int{12, 10, 11}}

	require.NoError(t, tbl.Concat(col))

	got, _ := tbl.Column("C")
	if diff := cmp.Diff([]any{"c10", "c11", "c12"}, got.Values); diff != "" {
		t.Errorf("aligned values mismatch (-want +got):\n%s", diff)
	}
}

func TestConcatRejectsMisalignedIndex(t *testing.T) {
	tbl := fixture()
	col := Column{Name: "C", Values: []any{1, 2, 3}, Index: []int{0, 1, 2}}

	assert.Error(t, tbl.Concat(col))
	assert.False(t, tbl.HasColumn("C"), "failed concat must not add columns")
}

func TestSampleWithoutReplacement(t *testing.T) {
	values := make([]any, 50)
	for i := range values {
		values[i] = i
	}
	tbl := MustFromColumns(NewColumn("id", values))
	r := rand.New(rand.NewPCG(1, 2))

	out, err := tbl.Sample(r, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, out.NRows())

	seen := make(map[int]bool)
	for i, label := range out.Index() {
		assert.False(t, seen[label], "label %d sampled twice", label)
		seen[label] = true
		assert.Equal(t, label, out.Value("id", i), "row values must travel with their index label")
	}
}

func TestSampleErrors(t *testing.T) {
	tbl := fixture()
	r := rand.New(rand.NewPCG(1, 2))

	_, err := tbl.Sample(r, 4)
	assert.Error(t, err)
	_, err = tbl.Sample(r, -1)
	assert.Error(t, err)

	out, err := tbl.Sample(r, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NRows())
	assert.Equal(t, []string{"A", "B"}, out.Columns())
}

func TestColumnFloats(t *testing.T) {
	col := NewColumn("x", []any{1.0, 2, true, "skip", nil})
	assert.Equal(t, []float64{1, 2, 1}, col.Floats())
}

func TestWithIndexLengthMismatch(t *testing.T) {
	col := NewColumn("x", []any{1, 2})
	_, err := col.WithIndex([]int{1})
	assert.Error(t, err)

	out, err := col.WithIndex([]int{7, 8})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8}, out.Index)
	assert.Equal(t, []int{0, 1}, col.Index, "original column must be untouched")
}

func TestJSONRecordsDropsNonFiniteNumbers(t *testing.T) {
	tbl := MustFromColumns(NewColumn("Y", []any{1.0, math.Inf(1), math.Inf(-1), math.NaN(), "x", nil}))

	got := tbl.JSONRecords()
	want := []any{1.0, nil, nil, nil, "x", nil}
	for i, row := range got {
		assert.Equal(t, want[i], row["Y"], "row %d", i)
	}
	assert.True(t, math.IsInf(tbl.Value("Y", 1).(float64), 1), "table keeps the raw value")
	assert.Equal(t, []any{nil, 2.0}, JSONValues([]any{math.Inf(1), 2.0}))
}
