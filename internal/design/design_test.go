package design

import (
	"os"
	"path/filepath"
	"testing"

	"godesign/domain/population"
	apperrors "godesign/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tutoringYAML = `
name: tutoring
seed: 7
population:
  table: data/students.csv
  variables:
    - name: U
      distribution: normal
      params: {mean: 0, sd: 2}
    - name: arm
      distribution: categorical
      categories: [control, treated]
potential_outcomes:
  - "Y0 = 50 + U"
  - "Y1 = Y0 + 3"
draw:
  n: 20
  frac: 0.5
`

func TestParseYAML(t *testing.T) {
	d, err := Parse([]byte(tutoringYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "tutoring", d.Name)
	require.NotNil(t, d.Seed)
	assert.Equal(t, int64(7), *d.Seed)
	assert.Equal(t, "data/students.csv", d.Population.Table)
	require.Len(t, d.Population.Variables, 2)
	assert.Equal(t, population.VariableSpec{
		Name:         "U",
		Distribution: "normal",
		Params:       map[string]float64{"mean": 0, "sd": 2},
	}, d.Population.Variables[0])
	assert.Equal(t, []string{"control", "treated"}, d.Population.Variables[1].Categories)
	assert.Equal(t, population.Outcomes{"Y0 = 50 + U", "Y1 = Y0 + 3"}, d.Outcomes())
	assert.Equal(t, 20, *d.Draw.N)
	assert.Equal(t, 0.5, *d.Draw.Frac)
}

func TestParseJSONSingleOutcome(t *testing.T) {
	doc := `{"population": {"variables": [{"name": "X", "distribution": "uniform"}]},
	         "potential_outcomes": "Y = X * 2"}`

	d, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, d.Seed)
	assert.Nil(t, d.Draw.N)
	assert.Equal(t, population.Outcomes{"Y = X * 2"}, d.Outcomes())
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
		check  func(error) bool
	}{
		{"empty", "  \n", FormatYAML, apperrors.IsValidation},
		{"no population", "name: x\n", FormatYAML, apperrors.IsValidation},
		{"unnamed variable", "population:\n  variables:\n    - distribution: normal\n", FormatYAML, apperrors.IsValidation},
		{"empty outcomes", "population: {table: a.csv}\npotential_outcomes: []\n", FormatYAML, apperrors.IsValidation},
		{"non-string outcome", "population: {table: a.csv}\npotential_outcomes: [1]\n", FormatYAML, apperrors.IsTypeError},
		{"bad yaml", "population: [", FormatYAML, apperrors.IsValidation},
		{"bad json", "{", FormatJSON, apperrors.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format)
			require.Error(t, err)
			assert.True(t, tt.check(err), "%v", err)
		})
	}

	_, err := Parse([]byte("a: 1"), Format("toml"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestLoadResolvesTablePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tutoring.yml")
	require.NoError(t, os.WriteFile(path, []byte(tutoringYAML), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, d.Source)
	assert.Equal(t, filepath.Join(dir, "data", "students.csv"), d.TablePath())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "tutoring", (&Design{Name: "tutoring"}).DisplayName())
	assert.Equal(t, "pilot", (&Design{Source: "/tmp/pilot.yaml"}).DisplayName())
	assert.Equal(t, "design", (&Design{}).DisplayName())
}

func TestConfineKeepsTablesInsideDataDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "students.csv"), []byte("A\n1\n"), 0o644))
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "payroll.csv"), []byte("salary\n1\n"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "payroll.csv"), filepath.Join(root, "link.csv")))

	d := &Design{Population: PopulationConfig{Table: "data/students.csv"}}
	require.NoError(t, d.Confine(root))
	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolvedRoot, "data", "students.csv"), d.TablePath())

	for _, table := range []string{
		filepath.Join(outside, "payroll.csv"),
		"../" + filepath.Base(outside) + "/payroll.csv",
		"data/../../payroll.csv",
		"link.csv",
	} {
		d := &Design{Population: PopulationConfig{Table: table}}
		err := d.Confine(root)
		require.Error(t, err, table)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err), table)
		assert.Equal(t, table, d.Population.Table, "rejected path is left as given")
	}

	err = (&Design{Population: PopulationConfig{Table: "data/students.csv"}}).Confine("")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	assert.NoError(t, (&Design{}).Confine(""), "generator-only designs need no data directory")
}
