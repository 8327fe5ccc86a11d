package population

// VariableSpec declares a generated variable by distribution name rather
// than by function, so designs can be written as data (YAML, JSON).
type VariableSpec struct {
	Name         string             `yaml:"name" json:"name"`
	Distribution string             `yaml:"distribution" json:"distribution"`
	Params       map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Categories   []string           `yaml:"categories,omitempty" json:"categories,omitempty"`
	Weights      []float64          `yaml:"weights,omitempty" json:"weights,omitempty"`
	Value        any                `yaml:"value,omitempty" json:"value,omitempty"`
}
