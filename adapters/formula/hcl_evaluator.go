// Package formula evaluates potential outcome formulas of the form
// "target = expression" against a table, one row at a time. Expressions use
// HCL expression syntax: arithmetic, comparisons, && || !, the conditional
// operator and a small set of numeric functions.
package formula

import (
	"context"
	"fmt"
	"math"
	"strings"

	"godesign/domain/table"
	"godesign/ports"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Evaluator is the HCL-backed ports.FormulaEvaluator.
type Evaluator struct {
	functions map[string]function.Function
}

var _ ports.FormulaEvaluator = (*Evaluator)(nil)

// NewEvaluator creates an evaluator with the default function library.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		functions: map[string]function.Function{
			"abs":    stdlib.AbsoluteFunc,
			"ceil":   stdlib.CeilFunc,
			"floor":  stdlib.FloorFunc,
			"int":    stdlib.IntFunc,
			"log":    stdlib.LogFunc,
			"max":    stdlib.MaxFunc,
			"min":    stdlib.MinFunc,
			"pow":    stdlib.PowFunc,
			"signum": stdlib.SignumFunc,
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
		},
	}
}

// Formula is a parsed "target = expression" pair.
type Formula struct {
	Target string
	Expr   hclsyntax.Expression
	Source string
}

// Parse splits and parses a formula without evaluating it.
func (e *Evaluator) Parse(formula string) (*Formula, error) {
	lhs, rhs, err := splitAssignment(formula)
	if err != nil {
		return nil, err
	}
	expr, diags := hclsyntax.ParseExpression([]byte(rhs), "formula", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, diags
	}
	return &Formula{Target: lhs, Expr: expr, Source: formula}, nil
}

// Target returns the column a formula assigns to.
func (e *Evaluator) Target(formula string) (string, error) {
	lhs, _, err := splitAssignment(formula)
	return lhs, err
}

// References returns the column names an expression reads.
func (f *Formula) References() []string {
	seen := make(map[string]bool)
	var names []string
	for _, traversal := range f.Expr.Variables() {
		name := traversal.RootName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Apply evaluates formula for every row of t and writes the result to the
// target column. t is modified in place and returned.
func (e *Evaluator) Apply(ctx context.Context, t *table.Table, formula string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := e.Parse(formula)
	if err != nil {
		return nil, err
	}

	// Only referenced columns go into the context, so an unknown name is
	// reported by HCL as an unknown variable.
	refs := make([]string, 0)
	for _, name := range f.References() {
		if t.HasColumn(name) {
			refs = append(refs, name)
		}
	}

	values := make([]any, t.NRows())
	evalCtx := &hcl.EvalContext{Functions: e.functions}
	for i := 0; i < t.NRows(); i++ {
		vars := make(map[string]cty.Value, len(refs))
		for _, name := range refs {
			vars[name] = toCty(t.Value(name, i))
		}
		evalCtx.Variables = vars

		result, diags := f.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		v, err := fromCty(result)
		if err != nil {
			return nil, fmt.Errorf("formula %q row %d: %w", formula, i, err)
		}
		values[i] = v
	}

	if err := t.SetColumn(table.Column{Name: f.Target, Values: values}); err != nil {
		return nil, err
	}
	return t, nil
}

// splitAssignment finds the first bare "=" (not part of ==, !=, <=, >=).
func splitAssignment(formula string) (string, string, error) {
	for i := 0; i < len(formula); i++ {
		if formula[i] != '=' {
			continue
		}
		if i+1 < len(formula) && formula[i+1] == '=' {
			i++
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>", rune(formula[i-1])) {
			continue
		}
		lhs := strings.TrimSpace(formula[:i])
		rhs := strings.TrimSpace(formula[i+1:])
		if !hclsyntax.ValidIdentifier(lhs) {
			return "", "", fmt.Errorf("formula %q: assignment target %q is not a valid column name", formula, lhs)
		}
		if rhs == "" {
			return "", "", fmt.Errorf("formula %q: missing expression after '='", formula)
		}
		return lhs, rhs, nil
	}
	return "", "", fmt.Errorf("formula %q has no assignment; expected \"target = expression\"", formula)
}

func toCty(v any) cty.Value {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case float64:
		if math.IsNaN(x) {
			return cty.NullVal(cty.Number)
		}
		return cty.NumberFloatVal(x)
	case float32:
		return cty.NumberFloatVal(float64(x))
	case int:
		return cty.NumberIntVal(int64(x))
	case int64:
		return cty.NumberIntVal(x)
	case int32:
		return cty.NumberIntVal(int64(x))
	case bool:
		return cty.BoolVal(x)
	case string:
		return cty.StringVal(x)
	default:
		return cty.StringVal(fmt.Sprint(x))
	}
}

func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("expression produced an unknown value")
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case cty.Bool:
		return v.True(), nil
	case cty.String:
		return v.AsString(), nil
	default:
		return nil, fmt.Errorf("expression produced unsupported type %s", v.Type().FriendlyName())
	}
}
