package frame

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShape is returned when index, columns and values disagree in size.
	ErrShape = errors.New("frame: shape mismatch")

	// ErrDuplicateColumn is returned when two columns would share a name.
	ErrDuplicateColumn = errors.New("frame: duplicate column")

	// ErrUnknownColumn is returned when a column name is not in the table.
	ErrUnknownColumn = errors.New("frame: unknown column")
)

// Table is a dense time-indexed table. The zero value is an empty table.
//
// A Table is not safe for concurrent mutation.
type Table struct {
	index   []time.Time
	columns []string
	data    *mat.Dense // nil when the table has no rows or no columns
}

// New returns a table with every cell missing (NaN).
func New(index []time.Time, columns []string) (*Table, error) {
	if err := checkUnique(columns); err != nil {
		return nil, err
	}

	t := &Table{
		index:   append([]time.Time(nil), index...),
		columns: append([]string(nil), columns...),
	}
	if len(index) > 0 && len(columns) > 0 {
		cells := make([]float64, len(index)*len(columns))
		for i := range cells {
			cells[i] = math.NaN()
		}
		t.data = mat.NewDense(len(index), len(columns), cells)
	}
	return t, nil
}

// Rows returns the number of sample instants.
func (t *Table) Rows() int { return len(t.index) }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.columns) }

// Empty reports whether the table holds no cells.
func (t *Table) Empty() bool { return t.data == nil }

// Index returns a copy of the row timestamps.
func (t *Table) Index() []time.Time {
	return append([]time.Time(nil), t.index...)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// At returns the value at row i, column j. It panics when out of range.
func (t *Table) At(i, j int) float64 {
	return t.data.At(i, j)
}

// Set stores v at row i, column j. It panics when out of range.
func (t *Table) Set(i, j int, v float64) {
	t.data.Set(i, j, v)
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]float64, t.Rows())
	if t.data != nil {
		mat.Col(out, j, t.data)
	}
	return out, nil
}

// Missing counts NaN cells.
func (t *Table) Missing() int {
	if t.data == nil {
		return 0
	}
	n := 0
	r, c := t.data.Dims()
	for i := 0; i < r; i++ {
		for _, v := range t.data.RawRowView(i)[:c] {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// FillMissing replaces every NaN cell with v and returns how many were replaced.
func (t *Table) FillMissing(v float64) int {
	if t.data == nil {
		return 0
	}
	n := 0
	r, c := t.data.Dims()
	for i := 0; i < r; i++ {
		row := t.data.RawRowView(i)[:c]
		for j, x := range row {
			if math.IsNaN(x) {
				row[j] = v
				n++
			}
		}
	}
	return n
}

// SetColumns renames every column in place. names must have one unique
// entry per column.
func (t *Table) SetColumns(names []string) error {
	if len(names) != len(t.columns) {
		return fmt.Errorf("%w: %d names for %d columns", ErrShape, len(names), len(t.columns))
	}
	if err := checkUnique(names); err != nil {
		return err
	}
	copy(t.columns, names)
	return nil
}

// Select returns a new table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out, err := New(t.index, names)
	if err != nil {
		return nil, err
	}
	for k, name := range names {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if out.data == nil {
			continue
		}
		col := make([]float64, t.Rows())
		mat.Col(col, j, t.data)
		out.data.SetCol(k, col)
	}
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		index:   append([]time.Time(nil), t.index...),
		columns: append([]string(nil), t.columns...),
	}
	if t.data != nil {
		out.data = mat.DenseCopyOf(t.data)
	}
	return out
}

// Sums returns the per-column sum, ignoring missing cells.
func (t *Table) Sums() []float64 {
	sums := make([]float64, t.Cols())
	if t.data == nil {
		return sums
	}
	col := make([]float64, t.Rows())
	for j := range sums {
		mat.Col(col, j, t.data)
		sums[j] = floats.Sum(present(col))
	}
	return sums
}

// Raw exposes the backing matrix. It is nil for an empty table.
func (t *Table) Raw() mat.Matrix {
	if t.data == nil {
		return nil
	}
	return t.data
}

func present(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func checkUnique(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
