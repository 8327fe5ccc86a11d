package app

import (
	"fmt"

	"godesign/domain/population"
	"godesign/domain/table"
	apperrors "godesign/internal/errors"
)

type generateConfig struct {
	index []int
}

// GenerateOption configures GenerateVar.
type GenerateOption func(*generateConfig)

// WithIndex overrides the generated column's index, aligning it with an
// existing table's rows.
func WithIndex(index []int) GenerateOption {
	return func(c *generateConfig) { c.index = index }
}

// GenerateVar calls g.Fn n times, in order, and collects the results into a
// column named g.Name. The first generator error is returned as-is.
func GenerateVar(g population.Generator, n int, opts ...GenerateOption) (table.Column, error) {
	cfg := generateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if n < 0 {
		return table.Column{}, apperrors.ValidationError(fmt.Sprintf("row count must be non-negative, got %d", n))
	}

	values := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := g.Fn()
		if err != nil {
			return table.Column{}, err
		}
		values[i] = v
	}

	col := table.NewColumn(g.Name, values)
	if cfg.index == nil {
		return col, nil
	}
	if len(cfg.index) != n {
		return table.Column{}, apperrors.ValidationError(fmt.Sprintf(
			"index of length %d does not match %d generated rows for %q", len(cfg.index), n, g.Name))
	}
	col.Index = append([]int(nil), cfg.index...)
	return col, nil
}
