package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"godesign/domain/table"
)

// BaselineGeneratorConfig configures the synthetic student baseline
type BaselineGeneratorConfig struct {
	StudentCount int   `json:"student_count"`
	SchoolCount  int   `json:"school_count"`
	Seed         int64 `json:"seed"`
}

// DefaultBaselineConfig returns sensible defaults for baseline generation
func DefaultBaselineConfig() BaselineGeneratorConfig {
	return BaselineGeneratorConfig{
		StudentCount: 200,
		SchoolCount:  8,
		Seed:         42,
	}
}

// BaselineGenerator produces a plausible pre-treatment population table:
// students nested in schools, with a school effect on prior scores.
type BaselineGenerator struct {
	config BaselineGeneratorConfig
	rng    *rand.Rand
}

// NewBaselineGenerator creates a new baseline generator
func NewBaselineGenerator(config BaselineGeneratorConfig) *BaselineGenerator {
	return &BaselineGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(uint64(config.Seed), 0x5eed)),
	}
}

// Generate builds the table. Columns: student_id, school, grade,
// prior_score, attendance, female.
func (g *BaselineGenerator) Generate() (*table.Table, error) {
	if g.config.StudentCount < 0 || g.config.SchoolCount < 1 {
		return nil, fmt.Errorf("baseline needs a non-negative student count and at least one school, got %d students in %d schools",
			g.config.StudentCount, g.config.SchoolCount)
	}

	schoolEffect := make([]float64, g.config.SchoolCount)
	for i := range schoolEffect {
		schoolEffect[i] = g.rng.NormFloat64() * 5
	}

	n := g.config.StudentCount
	ids := make([]any, n)
	schools := make([]any, n)
	grades := make([]any, n)
	scores := make([]any, n)
	attendance := make([]any, n)
	female := make([]any, n)

	for i := 0; i < n; i++ {
		school := g.rng.IntN(g.config.SchoolCount)
		ids[i] = fmt.Sprintf("student_%04d", i+1)
		schools[i] = fmt.Sprintf("school_%02d", school+1)
		grades[i] = float64(9 + g.rng.IntN(4))
		scores[i] = clamp(math.Round(70+schoolEffect[school]+g.rng.NormFloat64()*10), 0, 100)
		attendance[i] = math.Round((0.7+0.3*g.rng.Float64())*1000) / 1000
		female[i] = g.rng.Float64() < 0.5
	}

	return table.FromColumns(
		table.NewColumn("student_id", ids),
		table.NewColumn("school", schools),
		table.NewColumn("grade", grades),
		table.NewColumn("prior_score", scores),
		table.NewColumn("attendance", attendance),
		table.NewColumn("female", female),
	)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
