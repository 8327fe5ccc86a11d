package table

import (
	"fmt"
	"math"
	"strconv"
)

// Column is a named, indexed sequence of values. Values are float64, int,
// bool, string or nil.
type Column struct {
	Name   string
	Values []any
	Index  []int
}

// NewColumn builds a column with the default 0..n-1 index.
func NewColumn(name string, values []any) Column {
	return Column{Name: name, Values: values, Index: RangeIndex(len(values))}
}

// Len returns the number of values in the column
func (c Column) Len() int {
	return len(c.Values)
}

// WithIndex returns a copy of the column with its index replaced.
func (c Column) WithIndex(index []int) (Column, error) {
	if len(index) != len(c.Values) {
		return Column{}, fmt.Errorf("index of length %d does not match column %q of length %d",
			len(index), c.Name, len(c.Values))
	}
	out := c.Copy()
	out.Index = append([]int(nil), index...)
	return out, nil
}

// Copy returns a deep copy of the column.
func (c Column) Copy() Column {
	return Column{
		Name:   c.Name,
		Values: append([]any(nil), c.Values...),
		Index:  append([]int(nil), c.Index...),
	}
}

// Floats returns the numeric view of the column. Non-numeric values are
// skipped; bools count as 0/1.
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// ToFloat converts a cell value to float64 when it is numeric.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// FormatValue renders a cell for text output (CSV, spreadsheets, logs).
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// JSONValue maps a cell onto a value JSON can encode: NaN and infinities
// become nil.
func JSONValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	}
	return v
}

// JSONValues applies JSONValue to every value, returning a new slice.
func JSONValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = JSONValue(v)
	}
	return out
}

// RangeIndex returns 0..n-1.
func RangeIndex(n int) []int {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	return index
}
