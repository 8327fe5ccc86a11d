package ports

import (
	"context"

	"godesign/domain/table"
)

// FormulaEvaluator applies one outcome formula to a table. It returns the
// table with the formula's target column added or overwritten; the input
// table may be reused. Undefined column references and syntax errors are
// returned as errors.
type FormulaEvaluator interface {
	Apply(ctx context.Context, t *table.Table, formula string) (*table.Table, error)

	// Target returns the column a formula assigns to.
	Target(formula string) (string, error)
}
