package population

import (
	"errors"
	"strings"
	"testing"

	"godesign/domain/core"
	"godesign/domain/table"
	apperrors "godesign/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTable() *table.Table {
	return table.MustFromColumns(
		table.NewColumn("A", []any{1.0, 2.0, 3.0}),
		table.NewColumn("B", []any{4.0, 5.0, 6.0}),
	)
}

func constant(name string, v any) Generator {
	return Of(name, func() any { return v })
}

func TestParseDispatchesOnShape(t *testing.T) {
	gens := MustGeneratorSet(constant("X", 1.0))

	tests := []struct {
		name  string
		input any
		kind  Kind
		vars  []string
	}{
		{"table", baseTable(), KindTableOnly, []string{"A", "B"}},
		{"generator set", gens, KindGeneratorsOnly, []string{"X"}},
		{"generator slice", []Generator{constant("X", 1.0)}, KindGeneratorsOnly, []string{"X"}},
		{"pair table first", []any{baseTable(), gens}, KindCombined, []string{"A", "B", "X"}},
		{"pair generators first", []any{gens, baseTable()}, KindCombined, []string{"A", "B", "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
			assert.Equal(t, tt.vars, p.Variables())
		})
	}
}

func TestParsePairLength(t *testing.T) {
	gens := MustGeneratorSet(constant("X", 1.0))

	for _, pair := range [][]any{
		{},
		{baseTable()},
		{baseTable(), gens, baseTable()},
	} {
		_, err := Parse(pair)
		require.Error(t, err, "length %d", len(pair))
		assert.True(t, errors.Is(err, core.ErrInvalidPopulationLength), "length %d: %v", len(pair), err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "was expecting length 2")
	}
}

func TestParsePairOfTwoTablesNamesBothTypes(t *testing.T) {
	_, err := Parse([]any{baseTable(), baseTable()})

	require.Error(t, err)
	assert.True(t, apperrors.IsTypeError(err))
	assert.Contains(t, err.Error(), "(*table.Table, *table.Table)")
}

func TestParsePairWithForeignElement(t *testing.T) {
	_, err := Parse([]any{baseTable(), map[string]int{"X": 1}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidType))
	assert.Contains(t, err.Error(), "map[string]int")
}

func TestParseRejectsUnknownType(t *testing.T) {
	for _, input := range []any{nil, 42, "table.csv", (*table.Table)(nil), Population{}} {
		_, err := Parse(input)
		require.Error(t, err)
		assert.True(t, apperrors.IsTypeError(err), "input %T: %v", input, err)
	}
}

func TestPopulationOwnsItsTable(t *testing.T) {
	src := baseTable()
	p, err := Parse([]any{src, MustGeneratorSet(constant("X", 1.0))})
	require.NoError(t, err)

	require.NoError(t, src.SetColumn(table.NewColumn("A", []any{0.0, 0.0, 0.0})))
	require.NoError(t, src.SetColumn(table.NewColumn("Z", []any{0.0, 0.0, 0.0})))

	col, _ := p.Table().Column("A")
	assert.Equal(t, []any{1.0, 2.0, 3.0}, col.Values)
	assert.False(t, p.Table().HasColumn("Z"))
}

func TestGeneratorSetValidation(t *testing.T) {
	_, err := NewGeneratorSet(constant("X", 1), constant("X", 2))
	assert.True(t, errors.Is(err, core.ErrDuplicateVariable))

	_, err = NewGeneratorSet(constant(" ", 1))
	assert.True(t, apperrors.IsValidation(err))

	_, err = NewGeneratorSet(Generator{Name: "X"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = NewGeneratorSet()
	assert.True(t, errors.Is(err, core.ErrEmptyGenerators))
}

func TestParseRejectsEmptyGeneratorSet(t *testing.T) {
	for _, input := range []any{
		GeneratorSet{},
		[]Generator{},
		[]any{baseTable(), GeneratorSet{}},
	} {
		_, err := Parse(input)
		require.Error(t, err, "%T", input)
		assert.True(t, errors.Is(err, core.ErrEmptyGenerators), "%v", err)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestParsePairRejectsGeneratorShadowingTableColumn(t *testing.T) {
	tbl := baseTable()
	_, err := Parse([]any{tbl, MustGeneratorSet(constant("X", 1.0), constant("A", 0.0))})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateVariable))
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), `"A"`)

	col, _ := tbl.Column("A")
	assert.Equal(t, []any{1.0, 2.0, 3.0}, col.Values)
}

func TestParseOutcomes(t *testing.T) {
	o, err := ParseOutcomes("Y = X * 2")
	require.NoError(t, err)
	assert.Equal(t, Outcomes{"Y = X * 2"}, o)

	o, err = ParseOutcomes([]any{"C = A + B", "D = C * 2"})
	require.NoError(t, err)
	assert.Equal(t, Outcomes{"C = A + B", "D = C * 2"}, o)

	_, err = ParseOutcomes([]string{})
	assert.True(t, errors.Is(err, core.ErrEmptyOutcomes))

	_, err = ParseOutcomes([]any{})
	assert.True(t, errors.Is(err, core.ErrEmptyOutcomes))

	_, err = ParseOutcomes([]any{"C = A + B", 3})
	require.Error(t, err)
	assert.True(t, apperrors.IsTypeError(err))
	assert.True(t, strings.Contains(err.Error(), "type int"), err.Error())

	_, err = ParseOutcomes(12.5)
	assert.True(t, apperrors.IsTypeError(err))
}
