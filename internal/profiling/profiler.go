// Package profiling summarizes drawn datasets column by column.
package profiling

import (
	"sort"

	"godesign/domain/table"
)

// ColumnKind classifies a column by the values it holds.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindBoolean     ColumnKind = "boolean"
	KindCategorical ColumnKind = "categorical"
	KindEmpty       ColumnKind = "empty"
)

// maxLevels caps the categorical levels kept per column.
const maxLevels = 10

// Level is one categorical value and its frequency.
type Level struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Count   int        `json:"count"`
	Missing int        `json:"missing"`
	Summary *Summary   `json:"summary,omitempty"`
	Levels  []Level    `json:"levels,omitempty"`
}

// Profile describes a whole table.
type Profile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// DataProfiler builds profiles of tables.
type DataProfiler struct{}

// NewDataProfiler creates a profiler.
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileTable profiles every column in table order.
func (dp *DataProfiler) ProfileTable(t *table.Table) Profile {
	p := Profile{Rows: t.NRows()}
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		p.Columns = append(p.Columns, dp.ProfileColumn(col))
	}
	return p
}

// ProfileColumn classifies a column and summarizes it. Numeric columns get
// a Summary, everything else gets its most frequent levels.
func (dp *DataProfiler) ProfileColumn(col table.Column) ColumnProfile {
	cp := ColumnProfile{Name: col.Name, Count: col.Len()}

	numeric, boolean := true, true
	for _, v := range col.Values {
		switch v.(type) {
		case nil:
			cp.Missing++
		case float64, float32, int, int64:
			boolean = false
		case bool:
			numeric = false
		default:
			numeric, boolean = false, false
		}
	}

	switch {
	case cp.Missing == cp.Count:
		cp.Kind = KindEmpty
	case numeric:
		cp.Kind = KindNumeric
		if s, err := Summarize(col.Floats()); err == nil {
			cp.Summary = &s
		}
	case boolean:
		cp.Kind = KindBoolean
		cp.Levels = levels(col.Values)
	default:
		cp.Kind = KindCategorical
		cp.Levels = levels(col.Values)
	}
	return cp
}

func levels(values []any) []Level {
	counts := make(map[string]int)
	for _, v := range values {
		if v == nil {
			continue
		}
		counts[table.FormatValue(v)]++
	}
	out := make([]Level, 0, len(counts))
	for v, c := range counts {
		out = append(out, Level{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}
