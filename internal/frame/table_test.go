package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func index(n int) []time.Time {
	start := time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * 6 * time.Second)
	}
	return out
}

func TestNew_StartsMissing(t *testing.T) {
	tbl, err := New(index(3), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 2, tbl.Cols())
	assert.Equal(t, 6, tbl.Missing())
	assert.True(t, math.IsNaN(tbl.At(2, 1)))
}

func TestNew_DuplicateColumn(t *testing.T) {
	_, err := New(index(1), []string{"a", "a"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestNew_Empty(t *testing.T) {
	tbl, err := New(nil, []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, tbl.Empty())
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, 0, tbl.FillMissing(0))
	assert.Nil(t, tbl.Raw())

	col, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Empty(t, col)
	assert.Equal(t, []float64{0, 0}, tbl.Sums())
}

func TestFillMissing(t *testing.T) {
	tbl, err := New(index(2), []string{"a", "b"})
	require.NoError(t, err)
	tbl.Set(0, 0, 10)
	tbl.Set(1, 1, 0)

	assert.Equal(t, 2, tbl.FillMissing(0))
	assert.Zero(t, tbl.Missing())

	a, err := tbl.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 0}, a)
}

func TestSetColumns(t *testing.T) {
	tbl, err := New(index(1), []string{"b1/m5", "b1/m6"})
	require.NoError(t, err)
	tbl.Set(0, 1, 3)

	require.NoError(t, tbl.SetColumns([]string{"kettle_0", "fridge_0"}))
	assert.Equal(t, []string{"kettle_0", "fridge_0"}, tbl.Columns())
	assert.Equal(t, 3.0, tbl.At(0, 1))

	assert.ErrorIs(t, tbl.SetColumns([]string{"only"}), ErrShape)
	assert.ErrorIs(t, tbl.SetColumns([]string{"x", "x"}), ErrDuplicateColumn)
	assert.Equal(t, []string{"kettle_0", "fridge_0"}, tbl.Columns(), "failed rename leaves columns untouched")
}

func TestClone(t *testing.T) {
	tbl, err := New(index(1), []string{"a"})
	require.NoError(t, err)
	tbl.Set(0, 0, 1)

	c := tbl.Clone()
	c.Set(0, 0, 9)
	require.NoError(t, c.SetColumns([]string{"z"}))

	assert.Equal(t, 1.0, tbl.At(0, 0))
	assert.Equal(t, []string{"a"}, tbl.Columns())
}

func TestSelect(t *testing.T) {
	tbl, err := New(index(2), []string{"a", "b", "c"})
	require.NoError(t, err)
	tbl.FillMissing(1)
	tbl.Set(1, 2, 7)

	sel, err := tbl.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Columns())
	assert.Equal(t, 7.0, sel.At(1, 0))
	assert.Equal(t, 1.0, sel.At(1, 1))

	_, err = tbl.Select("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSums_IgnoreMissing(t *testing.T) {
	tbl, err := New(index(3), []string{"a"})
	require.NoError(t, err)
	tbl.Set(0, 0, 1.5)
	tbl.Set(2, 0, 2.5)

	assert.Equal(t, []float64{4}, tbl.Sums())
}

func TestColumn_Unknown(t *testing.T) {
	tbl, err := New(index(1), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, -1, tbl.ColumnIndex("z"))
	_, err = tbl.Column("z")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
