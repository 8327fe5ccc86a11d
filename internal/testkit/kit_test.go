package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"godesign/adapters/excel"
	"godesign/internal/design"
)

func TestBaselineGenerator_Basic(t *testing.T) {
	config := BaselineGeneratorConfig{StudentCount: 50, SchoolCount: 3, Seed: 7}

	tbl, err := NewBaselineGenerator(config).Generate()
	if err != nil {
		t.Fatalf("Failed to generate baseline: %v", err)
	}
	if tbl.NRows() != 50 {
		t.Errorf("Expected 50 rows, got %d", tbl.NRows())
	}

	want := []string{"student_id", "school", "grade", "prior_score", "attendance", "female"}
	got := tbl.Columns()
	if len(got) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Column %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	for i := 0; i < tbl.NRows(); i++ {
		score := tbl.Value("prior_score", i).(float64)
		if score < 0 || score > 100 {
			t.Errorf("Row %d: prior_score %g out of range", i, score)
		}
		att := tbl.Value("attendance", i).(float64)
		if att < 0.7 || att > 1 {
			t.Errorf("Row %d: attendance %g out of range", i, att)
		}
	}
}

func TestBaselineGenerator_Deterministic(t *testing.T) {
	config := DefaultBaselineConfig()

	a, err := NewBaselineGenerator(config).Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBaselineGenerator(config).Generate()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < a.NRows(); i++ {
		if a.Value("prior_score", i) != b.Value("prior_score", i) {
			t.Fatalf("Row %d differs between runs with the same seed", i)
		}
	}
}

func TestBaselineGenerator_InvalidConfig(t *testing.T) {
	if _, err := NewBaselineGenerator(BaselineGeneratorConfig{StudentCount: 10}).Generate(); err == nil {
		t.Error("Expected an error for zero schools")
	}
}

func TestScaffold(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "example")
	ctx := context.Background()

	path, err := Scaffold(ctx, dir, BaselineGeneratorConfig{StudentCount: 20, SchoolCount: 2, Seed: 1})
	if err != nil {
		t.Fatalf("Scaffold failed: %v", err)
	}

	d, err := design.Load(path)
	if err != nil {
		t.Fatalf("Scaffolded design does not load: %v", err)
	}
	tbl, err := excel.NewDataReader("").ReadTable(ctx, d.TablePath())
	if err != nil {
		t.Fatalf("Scaffolded table does not load: %v", err)
	}
	if tbl.NRows() != 20 {
		t.Errorf("Expected 20 rows, got %d", tbl.NRows())
	}

	if _, err := Scaffold(ctx, dir, DefaultBaselineConfig()); err == nil {
		t.Error("Expected Scaffold to refuse to overwrite")
	}
}
