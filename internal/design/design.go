// Package design loads experiment design documents: the declarative form of
// a model (population source, generated variables, outcome formulas) plus
// default draw settings.
package design

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"godesign/domain/population"
	apperrors "godesign/internal/errors"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Design is one parsed design document.
type Design struct {
	Name       string           `json:"name" yaml:"name"`
	Seed       *int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
	Population PopulationConfig `json:"population" yaml:"population"`

	// PotentialOutcomes is a single formula or a list of formulas, kept
	// untyped so the model's own argument checks apply to it.
	PotentialOutcomes any `json:"potential_outcomes,omitempty" yaml:"potential_outcomes,omitempty"`

	Draw DrawConfig `json:"draw" yaml:"draw"`

	// Source is the file the design was loaded from, if any.
	Source string `json:"-" yaml:"-"`
}

// PopulationConfig names a table file, generated variables, or both.
type PopulationConfig struct {
	Table     string                    `json:"table,omitempty" yaml:"table,omitempty"`
	Sheet     string                    `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Variables []population.VariableSpec `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// DrawConfig holds the default subsample for draws of this design.
type DrawConfig struct {
	N    *int     `json:"n,omitempty" yaml:"n,omitempty"`
	Frac *float64 `json:"frac,omitempty" yaml:"frac,omitempty"`
}

// Load reads a design from a .yaml, .yml or .json file.
func Load(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound(fmt.Sprintf("design file %s", path))
		}
		return nil, apperrors.Wrapf(err, "read design %s", path)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	d, err := Parse(data, format)
	if err != nil {
		return nil, apperrors.Wrapf(err, "design %s", path)
	}
	d.Source = path
	return d, nil
}

// Format is a design document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Parse decodes and validates a design document.
func Parse(data []byte, format Format) (*Design, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, apperrors.ValidationError("design document is empty")
	}

	var d Design
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, apperrors.ValidationError(fmt.Sprintf("invalid JSON design: %v", err))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, apperrors.ValidationError(fmt.Sprintf("invalid YAML design: %v", err))
		}
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown design format %q", format))
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the document's shape. Distribution parameters and formula
// syntax are checked when the model is built.
func (d *Design) Validate() error {
	if d.Population.Table == "" && len(d.Population.Variables) == 0 {
		return apperrors.ValidationError("population needs a table, variables, or both")
	}
	for i, v := range d.Population.Variables {
		if strings.TrimSpace(v.Name) == "" {
			return apperrors.ValidationError(fmt.Sprintf("population variable %d has no name", i))
		}
	}
	if d.PotentialOutcomes != nil {
		if _, err := population.ParseOutcomes(d.PotentialOutcomes); err != nil {
			return err
		}
	}
	return nil
}

// Outcomes returns the parsed formulas, or nil when none are declared.
func (d *Design) Outcomes() population.Outcomes {
	if d.PotentialOutcomes == nil {
		return nil
	}
	o, err := population.ParseOutcomes(d.PotentialOutcomes)
	if err != nil {
		return nil
	}
	return o
}

// TablePath resolves the population table relative to the design file.
func (d *Design) TablePath() string {
	p := d.Population.Table
	if p == "" || filepath.IsAbs(p) || d.Source == "" {
		return p
	}
	return filepath.Join(filepath.Dir(d.Source), p)
}

// Confine resolves the population table inside root, for designs that did
// not come from a local file. Absolute paths and paths leaving root,
// including through symlinks, are rejected. The resolved path replaces
// Population.Table.
func (d *Design) Confine(root string) error {
	p := d.Population.Table
	if p == "" {
		return nil
	}
	if root == "" {
		return apperrors.InvalidInput("population tables are disabled: no data directory is configured")
	}
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return apperrors.InvalidInput(fmt.Sprintf("population table %q must be relative to the data directory", p))
	}

	base, err := filepath.Abs(root)
	if err != nil {
		return apperrors.Wrapf(err, "resolve data directory %s", root)
	}
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}
	target := filepath.Join(base, p)
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	if !within(base, target) {
		return apperrors.InvalidInput(fmt.Sprintf("population table %q is outside the data directory", p))
	}
	d.Population.Table = target
	return nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// DisplayName is the design's name, falling back to its file name.
func (d *Design) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Source != "" {
		return strings.TrimSuffix(filepath.Base(d.Source), filepath.Ext(d.Source))
	}
	return "design"
}
