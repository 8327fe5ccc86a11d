package population

import (
	"strings"

	"godesign/domain/core"
)

// Outcomes is the ordered list of potential outcome formulas. Formula k may
// reference columns produced by formulas 1..k-1.
type Outcomes []string

// NewOutcomes validates a typed formula list.
func NewOutcomes(formulas ...string) (Outcomes, error) {
	if len(formulas) == 0 {
		return nil, core.ErrEmptyOutcomes
	}
	return Outcomes(append([]string(nil), formulas...)), nil
}

// ParseOutcomes accepts a single formula string or a non-empty sequence of
// formula strings.
func ParseOutcomes(v any) (Outcomes, error) {
	switch x := v.(type) {
	case string:
		return Outcomes{x}, nil
	case Outcomes:
		return NewOutcomes(x...)
	case []string:
		return NewOutcomes(x...)
	case []any:
		if len(x) == 0 {
			return nil, core.ErrEmptyOutcomes
		}
		formulas := make([]string, 0, len(x))
		for _, element := range x {
			formula, ok := element.(string)
			if !ok {
				return nil, core.NewOutcomeTypeError(element)
			}
			formulas = append(formulas, formula)
		}
		return Outcomes(formulas), nil
	default:
		return nil, core.NewOutcomeTypeError(v)
	}
}

func (o Outcomes) String() string {
	return strings.Join(o, "; ")
}
