// Package testkit provides fixtures: a synthetic baseline population and an
// example design that draws from it. The CLI's init command scaffolds them.
package testkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"godesign/adapters/excel"
)

// BaselineFile is the name of the scaffolded population table.
const BaselineFile = "students.csv"

// DesignFile is the name of the scaffolded design.
const DesignFile = "tutoring.yaml"

// ExampleDesign is a tutoring experiment on the baseline table: a
// heterogeneous treatment effect that grows with attendance.
const ExampleDesign = `name: tutoring
seed: 42
population:
  table: ` + BaselineFile + `
  variables:
    - name: noise
      distribution: normal
      params: {mean: 0, sd: 5}
    - name: treated
      distribution: bernoulli
      params: {p: 0.5}
potential_outcomes:
  - "Y0 = prior_score + noise"
  - "Y1 = Y0 + 4 * attendance"
  - "Y = treated == 1 ? Y1 : Y0"
draw:
  n: 100
`

// Scaffold writes the baseline table and example design into dir and
// returns the design path. Existing files are not overwritten.
func Scaffold(ctx context.Context, dir string, config BaselineGeneratorConfig) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	designPath := filepath.Join(dir, DesignFile)
	tablePath := filepath.Join(dir, BaselineFile)
	for _, p := range []string{designPath, tablePath} {
		if _, err := os.Stat(p); err == nil {
			return "", fmt.Errorf("%s already exists", p)
		}
	}

	baseline, err := NewBaselineGenerator(config).Generate()
	if err != nil {
		return "", err
	}
	if err := excel.NewDataWriter("").WriteTable(ctx, baseline, tablePath); err != nil {
		return "", err
	}
	if err := os.WriteFile(designPath, []byte(ExampleDesign), 0o644); err != nil {
		return "", err
	}
	return designPath, nil
}
