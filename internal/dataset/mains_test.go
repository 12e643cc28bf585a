package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainsPaths(t *testing.T) {
	ctx := context.Background()
	ds := New("", newFixture(), newFixture())

	t.Run("union path collapses to the first mains", func(t *testing.T) {
		elec, err := ds.Elec(ctx, 1, march())
		require.NoError(t, err)

		g, err := mainsForUnion(elec)
		require.NoError(t, err)
		assert.Equal(t, keys(1), g.Keys())
	})

	t.Run("read path keeps every mains", func(t *testing.T) {
		elec, err := ds.Elec(ctx, 1, march())
		require.NoError(t, err)

		g, err := mainsForRead(elec)
		require.NoError(t, err)
		assert.Equal(t, keys(1, 2), g.Keys())
	})

	t.Run("single mains is the same on both paths", func(t *testing.T) {
		elec, err := ds.Elec(ctx, 3, march())
		require.NoError(t, err)

		u, err := mainsForUnion(elec)
		require.NoError(t, err)
		r, err := mainsForRead(elec)
		require.NoError(t, err)
		assert.Equal(t, u.Keys(), r.Keys())
	})

	t.Run("no mains", func(t *testing.T) {
		elec, err := ds.Elec(ctx, 2, march())
		require.NoError(t, err)

		_, err = mainsForUnion(elec)
		assert.ErrorIs(t, err, ErrNoSiteMeter)
		_, err = mainsForRead(elec)
		assert.ErrorIs(t, err, ErrNoSiteMeter)
	})
}

func TestReadMains(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	store.add(MeterKey{Building: 1, Instance: 1}, t0, 300, 310)
	store.add(MeterKey{Building: 1, Instance: 2}, t0, 120, 125)
	h := newTestHandler(t, store)

	table, group, err := h.ReadMains(ctx, march(), 6, 1)
	require.NoError(t, err)

	assert.Equal(t, keys(1, 2), group.Keys())
	assert.Equal(t, []string{"b1/m1", "b1/m2"}, table.Columns())
	assert.Equal(t, 2, table.Rows())

	_, _, err = h.ReadMains(ctx, march(), 6, 2)
	assert.ErrorIs(t, err, ErrNoSiteMeter)
}

func TestReadAllMeters(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	store.add(MeterKey{Building: 2, Instance: 2}, at(12), 60)
	h := newTestHandler(t, store)

	table, group, err := h.ReadAllMeters(ctx, march(), 6, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, group.Len())
	assert.Equal(t, []string{"b2/m1", "b2/m2"}, table.Columns())
	require.Equal(t, 1, table.Rows())
	assert.Equal(t, 0.0, table.At(0, 0))
	assert.Equal(t, 60.0, table.At(0, 1))
}
