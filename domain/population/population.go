// Package population declares where a model's baseline data comes from and
// which outcome formulas derive new columns from it.
package population

import (
	"fmt"

	"godesign/domain/core"
	"godesign/domain/table"
)

// Kind tags the shape of a Population.
type Kind int

const (
	KindTableOnly Kind = iota + 1
	KindGeneratorsOnly
	KindCombined
)

func (k Kind) String() string {
	switch k {
	case KindTableOnly:
		return "table"
	case KindGeneratorsOnly:
		return "generators"
	case KindCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// Population is one of: a table, a generator set, or a table paired with a
// generator set. Build it with TableOnly, GeneratorsOnly, Combined or Parse.
type Population struct {
	kind       Kind
	table      *table.Table
	generators GeneratorSet
}

// TableOnly declares a pre-built baseline. The table is copied.
func TableOnly(t *table.Table) Population {
	return Population{kind: KindTableOnly, table: t.Copy()}
}

// GeneratorsOnly declares a fully synthetic baseline. The set must not be
// empty.
func GeneratorsOnly(gens GeneratorSet) (Population, error) {
	if gens.Len() == 0 {
		return Population{}, core.ErrEmptyGenerators
	}
	return Population{kind: KindGeneratorsOnly, generators: gens}, nil
}

// Combined declares a table whose rows are extended with generated columns.
// The table is copied. A generator may not reuse a table column's name.
func Combined(t *table.Table, gens GeneratorSet) (Population, error) {
	if gens.Len() == 0 {
		return Population{}, core.ErrEmptyGenerators
	}
	for _, name := range gens.Names() {
		if t.HasColumn(name) {
			return Population{}, fmt.Errorf("%w: generator %q clashes with a table column", core.ErrDuplicateVariable, name)
		}
	}
	return Population{kind: KindCombined, table: t.Copy(), generators: gens}, nil
}

// Kind returns the population shape.
func (p Population) Kind() Kind {
	return p.kind
}

// Table returns the declared table, or nil for GeneratorsOnly. Callers must
// not mutate it; use Copy.
func (p Population) Table() *table.Table {
	return p.table
}

// Generators returns the declared generator set (empty for TableOnly).
func (p Population) Generators() GeneratorSet {
	return p.generators
}

// Variables returns the column names a draw will contain before outcomes are
// applied: table columns first, then generated ones.
func (p Population) Variables() []string {
	var names []string
	if p.table != nil {
		names = append(names, p.table.Columns()...)
	}
	return append(names, p.generators.Names()...)
}

// Parse dispatches on the structural shape of v:
//
//   - []any: must hold exactly one *table.Table and one GeneratorSet
//   - *table.Table, GeneratorSet, []Generator or Population
//
// Anything else is a type error naming the received type.
func Parse(v any) (Population, error) {
	switch x := v.(type) {
	case Population:
		if x.kind == 0 {
			return Population{}, core.NewPopulationTypeError(v)
		}
		return x, nil
	case *Population:
		if x == nil {
			return Population{}, core.NewPopulationTypeError(v)
		}
		return Parse(*x)
	case *table.Table:
		if x == nil {
			return Population{}, core.NewPopulationTypeError(v)
		}
		return TableOnly(x), nil
	case GeneratorSet:
		return GeneratorsOnly(x)
	case []Generator:
		gens, err := NewGeneratorSet(x...)
		if err != nil {
			return Population{}, err
		}
		return GeneratorsOnly(gens)
	case []any:
		return parsePair(x)
	default:
		return Population{}, core.NewPopulationTypeError(v)
	}
}

func parsePair(pair []any) (Population, error) {
	if len(pair) != 2 {
		return Population{}, core.NewPopulationLengthError(len(pair))
	}

	var (
		tbl     *table.Table
		gens    GeneratorSet
		hasGens bool
	)
	for _, element := range pair {
		switch x := element.(type) {
		case *table.Table:
			if x == nil || tbl != nil {
				return Population{}, core.NewPopulationPairTypeError(pair)
			}
			tbl = x
		case GeneratorSet:
			if hasGens {
				return Population{}, core.NewPopulationPairTypeError(pair)
			}
			gens, hasGens = x, true
		default:
			return Population{}, core.NewPopulationPairTypeError(pair)
		}
	}
	return Combined(tbl, gens)
}
