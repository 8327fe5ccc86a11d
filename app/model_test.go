package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"godesign/adapters/formula"
	"godesign/domain/core"
	"godesign/domain/population"
	"godesign/domain/table"
	apperrors "godesign/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, opts ...ModelOption) *Model {
	t.Helper()
	opts = append([]ModelOption{WithRand(rand.New(rand.NewPCG(3, 4)))}, opts...)
	m, err := NewModel(formula.NewEvaluator(), opts...)
	require.NoError(t, err)
	return m
}

func abTable(n int) *table.Table {
	a := make([]any, n)
	b := make([]any, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i)
		b[i] = float64(10 * i)
	}
	return table.MustFromColumns(table.NewColumn("A", a), table.NewColumn("B", b))
}

func counter(name string) population.Generator {
	i := 0
	return population.Of(name, func() any {
		i++
		return float64(i)
	})
}

func TestDrawDataPopulationShapes(t *testing.T) {
	gens := population.MustGeneratorSet(counter("X"), counter("Y"))

	tests := []struct {
		name    string
		pop     any
		columns []string
		rows    int
	}{
		{"table only", abTable(7), []string{"A", "B"}, 7},
		{"generators only", gens, []string{"X", "Y"}, DefaultGeneratedRows},
		{"combined", []any{abTable(7), gens}, []string{"A", "B", "X", "Y"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, WithPopulation(tt.pop))
			out, err := m.DrawData(context.Background(), DrawRequest{})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.columns, out.Columns())
			assert.Equal(t, tt.rows, out.NRows())
		})
	}
}

func TestDrawDataDefaultRowCount(t *testing.T) {
	m := newTestModel(t, WithPopulation([]population.Generator{counter("X")}))

	out, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)
	assert.Equal(t, 100, out.NRows())

	col, _ := out.Column("X")
	assert.Equal(t, 1.0, col.Values[0])
	assert.Equal(t, 100.0, col.Values[99], "generator must be called once per row, in order")
}

func TestDrawDataOutcomeOrdering(t *testing.T) {
	m := newTestModel(t,
		WithPopulation(abTable(5)),
		WithPotentialOutcomes([]any{"C = A + B", "D = C * 2"}),
	)

	out, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)

	for i := 0; i < out.NRows(); i++ {
		a := out.Value("A", i).(float64)
		b := out.Value("B", i).(float64)
		assert.Equal(t, 2*(a+b), out.Value("D", i))
	}
}

func TestDrawDataCombinedIndexAlignment(t *testing.T) {
	base := table.MustFromColumns(table.Column{
		Name:   "A",
		Values: []any{1.0, 2.0, 3.0, 4.0, 5.0},
		Index:  []int{100, 101, 102, 103, 104},
	})
	gens := population.MustGeneratorSet(counter("Y"))
	m := newTestModel(t, WithPopulation([]any{base, gens}))

	out, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)

	assert.Equal(t, 5, out.NRows())
	y, ok := out.Column("Y")
	require.True(t, ok)
	assert.Equal(t, []int{100, 101, 102, 103, 104}, y.Index)
	assert.Equal(t, []any{1.0, 2.0, 3.0, 4.0, 5.0}, y.Values)
}

func TestDrawDataSamplingComposition(t *testing.T) {
	m := newTestModel(t, WithPopulation(abTable(40)))

	n, frac := 10, 0.5
	out, err := m.DrawData(context.Background(), DrawRequest{N: &n, Frac: &frac})
	require.NoError(t, err)
	assert.Equal(t, 5, out.NRows())

	out, err = m.DrawData(context.Background(), DrawN(12))
	require.NoError(t, err)
	assert.Equal(t, 12, out.NRows())

	out, err = m.DrawData(context.Background(), DrawFrac(0.25))
	require.NoError(t, err)
	assert.Equal(t, 10, out.NRows())
}

func TestDrawDataSampleKeepsRowsIntact(t *testing.T) {
	m := newTestModel(t, WithPopulation(abTable(30)), WithPotentialOutcomes("C = A + B"))

	out, err := m.DrawData(context.Background(), DrawN(10))
	require.NoError(t, err)
	for i, label := range out.Index() {
		assert.Equal(t, float64(label), out.Value("A", i))
		assert.Equal(t, float64(11*label), out.Value("C", i))
	}
}

func TestDrawDataRequestErrors(t *testing.T) {
	m := newTestModel(t, WithPopulation(abTable(5)))

	for _, req := range []DrawRequest{DrawN(6), DrawN(-1), DrawFrac(1.5), DrawFrac(-0.1)} {
		_, err := m.DrawData(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidDrawRequest), "%v", err)
	}
}

func TestDrawDataUndeclaredPopulation(t *testing.T) {
	m := newTestModel(t)

	_, err := m.DrawData(context.Background(), DrawRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPopulationNotDeclared))
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "not declared")
}

func TestRedeclarationLastWins(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.DeclarePopulation(abTable(3)))
	require.NoError(t, m.DeclarePopulation(population.MustGeneratorSet(counter("Z"))))

	out, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, out.Columns())
	assert.Equal(t, DefaultGeneratedRows, out.NRows())
}

func TestFailedDeclarationKeepsPreviousState(t *testing.T) {
	m := newTestModel(t, WithPopulation(abTable(3)), WithPotentialOutcomes("C = A"))

	require.Error(t, m.DeclarePopulation([]any{abTable(3)}))
	require.Error(t, m.DeclarePotentialOutcomes([]any{}))
	require.Error(t, m.DeclarePotentialOutcomes([]any{"D = A", 1}))

	require.NotNil(t, m.Population())
	assert.Equal(t, population.KindTableOnly, m.Population().Kind())
	assert.Equal(t, population.Outcomes{"C = A"}, m.PotentialOutcomes())
}

func TestNewModelRejectsInvalidOptions(t *testing.T) {
	_, err := NewModel(formula.NewEvaluator(), WithPopulation(42))
	assert.True(t, apperrors.IsTypeError(err))

	_, err = NewModel(nil)
	assert.Error(t, err)
}

func TestDrawDataDoesNotMutateDeclaredTable(t *testing.T) {
	src := abTable(4)
	m := newTestModel(t, WithPopulation(src), WithPotentialOutcomes("A = A + 1"))

	for i := 0; i < 2; i++ {
		out, err := m.DrawData(context.Background(), DrawRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1.0, out.Value("A", 0))
	}
	assert.Equal(t, 0.0, src.Value("A", 0))
}

func TestDrawDataPropagatesGeneratorErrors(t *testing.T) {
	boom := errors.New("boom")
	g := population.Generator{Name: "X", Fn: func() (any, error) { return nil, boom }}
	m := newTestModel(t, WithPopulation([]population.Generator{g}))

	_, err := m.DrawData(context.Background(), DrawRequest{})
	assert.Same(t, boom, err)
}

func TestDrawDataPropagatesFormulaErrors(t *testing.T) {
	m := newTestModel(t, WithPopulation(abTable(3)), WithPotentialOutcomes("C = A + nope"))

	_, err := m.DrawData(context.Background(), DrawRequest{})
	require.Error(t, err)
	assert.False(t, apperrors.IsAppError(err), "evaluator errors are not translated")
}

func TestRepeatedDrawsReinvokeGenerators(t *testing.T) {
	m := newTestModel(t, WithPopulation([]population.Generator{counter("X")}))

	first, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)
	second, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, first.Value("X", 0))
	assert.Equal(t, 101.0, second.Value("X", 0))
}

func TestGenerateVar(t *testing.T) {
	col, err := GenerateVar(counter("X"), 3)
	require.NoError(t, err)
	assert.Equal(t, "X", col.Name)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, col.Values)
	assert.Equal(t, []int{0, 1, 2}, col.Index)

	col, err = GenerateVar(counter("X"), 2, WithIndex([]int{5, 9}))
	require.NoError(t, err)
	assert.Equal(t, []int{5, 9}, col.Index)

	_, err = GenerateVar(counter("X"), 2, WithIndex([]int{5}))
	assert.True(t, apperrors.IsValidation(err))
}

func TestDrawDataRejectsZeroPopulation(t *testing.T) {
	m := newTestModel(t)
	m.population = &population.Population{}

	_, err := m.DrawData(context.Background(), DrawRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsTypeError(err))
	assert.True(t, errors.Is(err, core.ErrInvalidType))
}

func TestDeclarePopulationRejectsShadowedColumn(t *testing.T) {
	m := newTestModel(t, WithPopulation(abTable(3)))

	err := m.DeclarePopulation([]any{abTable(3), population.MustGeneratorSet(counter("A"))})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateVariable))

	out, err := m.DrawData(context.Background(), DrawRequest{})
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 1.0, 2.0}, mustColumn(t, out, "A"))
}

func mustColumn(t *testing.T, tbl *table.Table, name string) []any {
	t.Helper()
	col, ok := tbl.Column(name)
	require.True(t, ok, name)
	return col.Values
}
