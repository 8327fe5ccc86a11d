package population

import (
	"fmt"
	"strings"

	"godesign/domain/core"
	apperrors "godesign/internal/errors"
)

// GeneratorFunc produces one synthetic value per call. Any arguments it needs
// are captured by the closure.
type GeneratorFunc func() (any, error)

// Generator binds a generator function to the column it fills.
type Generator struct {
	Name string
	Fn   GeneratorFunc
}

// Of adapts a function that cannot fail.
func Of(name string, fn func() any) Generator {
	return Generator{Name: name, Fn: func() (any, error) { return fn(), nil }}
}

// GeneratorSet is an ordered collection of generators with unique names.
// Columns are produced in declaration order.
type GeneratorSet struct {
	generators []Generator
}

// NewGeneratorSet validates names and builds a set. At least one generator
// is required.
func NewGeneratorSet(gens ...Generator) (GeneratorSet, error) {
	if len(gens) == 0 {
		return GeneratorSet{}, core.ErrEmptyGenerators
	}
	seen := make(map[string]bool, len(gens))
	for i, g := range gens {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return GeneratorSet{}, apperrors.ValidationError(fmt.Sprintf("generator %d has an empty name", i))
		}
		if g.Fn == nil {
			return GeneratorSet{}, apperrors.ValidationError(fmt.Sprintf("generator %q has no function", name))
		}
		if seen[name] {
			return GeneratorSet{}, fmt.Errorf("%w: %s", core.ErrDuplicateVariable, name)
		}
		seen[name] = true
	}
	return GeneratorSet{generators: append([]Generator(nil), gens...)}, nil
}

// MustGeneratorSet is NewGeneratorSet for fixtures; it panics on error.
func MustGeneratorSet(gens ...Generator) GeneratorSet {
	s, err := NewGeneratorSet(gens...)
	if err != nil {
		panic(err)
	}
	return s
}

// Generators returns the generators in declaration order.
func (s GeneratorSet) Generators() []Generator {
	return append([]Generator(nil), s.generators...)
}

// Names returns the declared variable names in order.
func (s GeneratorSet) Names() []string {
	names := make([]string, len(s.generators))
	for i, g := range s.generators {
		names[i] = g.Name
	}
	return names
}

// Len returns the number of generators.
func (s GeneratorSet) Len() int {
	return len(s.generators)
}
