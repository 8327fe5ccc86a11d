// Package table is the in-memory rectangular dataset used throughout godesign:
// named columns of equal length sharing one row index.
package table

import (
	"fmt"
	"math/rand/v2"
)

// Table holds ordered named columns aligned to a shared row index.
type Table struct {
	index   []int
	names   []string
	columns map[string][]any
}

// New creates an empty table with the given row index.
func New(index []int) *Table {
	return &Table{
		index:   append([]int(nil), index...),
		columns: make(map[string][]any),
	}
}

// FromColumns builds a table from columns of equal length. The first
// column's index becomes the table index; the others are aligned to it.
func FromColumns(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return New(nil), nil
	}
	index := cols[0].Index
	if index == nil {
		index = RangeIndex(cols[0].Len())
	}
	t := New(index)
	if err := t.Concat(cols...); err != nil {
		return nil, err
	}
	return t, nil
}

// MustFromColumns is FromColumns for fixtures; it panics on error.
func MustFromColumns(cols ...Column) *Table {
	t, err := FromColumns(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NRows returns the row count.
func (t *Table) NRows() int {
	return len(t.index)
}

// NCols returns the column count.
func (t *Table) NCols() int {
	return len(t.names)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// Index returns a copy of the row index.
func (t *Table) Index() []int {
	return append([]int(nil), t.index...)
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, bool) {
	values, ok := t.columns[name]
	if !ok {
		return Column{}, false
	}
	return Column{
		Name:   name,
		Values: append([]any(nil), values...),
		Index:  t.Index(),
	}, true
}

// Value returns the cell at row position i of column name.
func (t *Table) Value(name string, i int) any {
	return t.columns[name][i]
}

// Row returns row position i as a column-name keyed map.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.names))
	for _, name := range t.names {
		row[name] = t.columns[name][i]
	}
	return row
}

// Copy returns a deep copy; later mutation of either table does not affect the other.
func (t *Table) Copy() *Table {
	out := New(t.index)
	out.names = append([]string(nil), t.names...)
	for name, values := range t.columns {
		out.columns[name] = append([]any(nil), values...)
	}
	return out
}

// SetColumn adds col or overwrites the column of the same name. Values are
// taken positionally and must match the row count.
func (t *Table) SetColumn(col Column) error {
	if col.Name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if col.Len() != t.NRows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, col.Len(), t.NRows())
	}
	if _, exists := t.columns[col.Name]; !exists {
		t.names = append(t.names, col.Name)
	}
	t.columns[col.Name] = append([]any(nil), col.Values...)
	return nil
}

// Concat appends columns side by side, aligning each column's index labels
// to the table's index. A column whose labels do not cover the table index
// is rejected.
func (t *Table) Concat(cols ...Column) error {
	positions := make(map[int]int, len(t.index))
	for pos, label := range t.index {
		positions[label] = pos
	}

	aligned := make([]Column, 0, len(cols))
	for _, col := range cols {
		if col.Len() != t.NRows() {
			return fmt.Errorf("cannot concatenate column %q of length %d to table of %d rows",
				col.Name, col.Len(), t.NRows())
		}
		index := col.Index
		if index == nil {
			index = RangeIndex(col.Len())
		}
		if len(index) != col.Len() {
			return fmt.Errorf("column %q index length %d does not match its %d values", col.Name, len(index), col.Len())
		}
		values := make([]any, t.NRows())
		seen := make([]bool, t.NRows())
		for i, label := range index {
			pos, ok := positions[label]
			if !ok || seen[pos] {
				return fmt.Errorf("column %q index label %d is not aligned with the table index", col.Name, label)
			}
			seen[pos] = true
			values[pos] = col.Values[i]
		}
		aligned = append(aligned, Column{Name: col.Name, Values: values})
	}

	for _, col := range aligned {
		if err := t.SetColumn(col); err != nil {
			return err
		}
	}
	return nil
}

// Take returns a new table holding the rows at the given positions, in
// that order, with their original index labels.
func (t *Table) Take(positions []int) (*Table, error) {
	index := make([]int, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= t.NRows() {
			return nil, fmt.Errorf("row position %d out of range [0, %d)", pos, t.NRows())
		}
		index[i] = t.index[pos]
	}
	out := New(index)
	out.names = append([]string(nil), t.names...)
	for name, values := range t.columns {
		taken := make([]any, len(positions))
		for i, pos := range positions {
			taken[i] = values[pos]
		}
		out.columns[name] = taken
	}
	return out, nil
}

// Sample draws n rows uniformly at random without replacement.
func (t *Table) Sample(r *rand.Rand, n int) (*Table, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must be non-negative, got %d", n)
	}
	if n > t.NRows() {
		return nil, fmt.Errorf("cannot take a sample of %d rows larger than the %d available without replacement", n, t.NRows())
	}
	// Partial Fisher-Yates: the first n slots end up a uniform n-subset.
	perm := RangeIndex(t.NRows())
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(perm)-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return t.Take(perm[:n])
}

// Records returns the table as a slice of rows in index order.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.NRows())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// JSONRecords is Records with every cell passed through JSONValue.
func (t *Table) JSONRecords() []map[string]any {
	out := t.Records()
	for _, row := range out {
		for name, v := range row {
			row[name] = JSONValue(v)
		}
	}
	return out
}
