package dataset

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/nilmlab/internal/infrastructure/metrics"
)

func TestMaterialize_GapIsZero(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	kettle := MeterKey{Building: 1, Instance: 5}
	fridge := MeterKey{Building: 1, Instance: 3}
	store.add(kettle, at(0), 2000, 2100, 2050)
	store.add(kettle, at(36), 1900, 1950) // 18, 24 and 30 are missing
	store.add(fridge, at(0), 80, 81, 82, 83, 84, 85, 86, 87)
	h := newTestHandler(t, store)

	group := NewMeterGroup(meter(1, 5, app("kettle", 1)), meter(1, 3, app("fridge", 1)))
	table, err := h.Materialize(ctx, group, march(), 6)
	require.NoError(t, err)

	require.Equal(t, 8, table.Rows())
	assert.Zero(t, table.Missing())

	col, err := table.Column("b1/m5")
	require.NoError(t, err)
	assert.Equal(t, []float64{2000, 2100, 2050, 0, 0, 0, 1900, 1950}, col)
	for _, v := range col {
		assert.False(t, math.IsNaN(v))
	}

	index := table.Index()
	for i := 1; i < len(index); i++ {
		assert.Equal(t, 6.0, index[i].Sub(index[i-1]).Seconds(), "fixed cadence")
	}
}

func TestMaterialize_BucketMean(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	kettle := MeterKey{Building: 1, Instance: 5}
	store.readings[kettle] = []Reading{
		{Time: at(1), Watts: 10},
		{Time: at(4), Watts: 20},
		{Time: at(7), Watts: 40},
	}
	h := newTestHandler(t, store)

	table, err := h.Materialize(ctx, NewMeterGroup(meter(1, 5)), march(), 6)
	require.NoError(t, err)

	col, err := table.Column("b1/m5")
	require.NoError(t, err)
	assert.Equal(t, []float64{15, 40}, col)
	assert.True(t, table.Index()[0].Equal(at(0)), "buckets are epoch aligned")
}

func TestMaterialize_SpanCoversAllMeters(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	store.add(MeterKey{Building: 1, Instance: 5}, at(0), 1)
	store.add(MeterKey{Building: 1, Instance: 6}, at(30), 2)
	h := newTestHandler(t, store)

	group := NewMeterGroup(meter(1, 5), meter(1, 6))
	table, err := h.Materialize(ctx, group, march(), 6)
	require.NoError(t, err)

	assert.Equal(t, 6, table.Rows())
	assert.Equal(t, 1.0, table.At(0, 0))
	assert.Equal(t, 0.0, table.At(0, 1))
	assert.Equal(t, 2.0, table.At(5, 1))
}

func TestMaterialize_UnsortedSourceIsSorted(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	kettle := MeterKey{Building: 1, Instance: 5}
	store.readings[kettle] = []Reading{{Time: at(12), Watts: 3}, {Time: at(0), Watts: 1}}
	h := newTestHandler(t, store)

	table, err := h.Materialize(ctx, NewMeterGroup(meter(1, 5)), march(), 6)
	require.NoError(t, err)

	col, err := table.Column("b1/m5")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 3}, col)
}

func TestMaterialize_Errors(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t, newFixture())
	group := NewMeterGroup(meter(1, 5))

	_, err := h.Materialize(ctx, group, march(), 0)
	assert.ErrorIs(t, err, ErrInvalidSamplePeriod)

	_, err = h.Materialize(ctx, group, Window{Start: t0, End: t0.Add(-1)}, 6)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestMaterialize_EmptyGroup(t *testing.T) {
	table, err := newTestHandler(t, newFixture()).Materialize(context.Background(), MeterGroup{}, march(), 6)
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.Zero(t, table.Cols())
}

func TestMaterialize_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	store.add(MeterKey{Building: 1, Instance: 5}, at(0), 1, 2)
	store.add(MeterKey{Building: 1, Instance: 6}, at(6), 3)
	m := metrics.New()
	h := newTestHandler(t, store, WithMetrics(m))

	_, err := h.Materialize(ctx, NewMeterGroup(meter(1, 5), meter(1, 6)), march(), 6)
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, m.RowsMaterialized))
	assert.Equal(t, 1.0, counterValue(t, m.CellsFilled))
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{5999, 0},
		{6000, 1},
		{-1, -1},
		{-6000, -1},
		{-6001, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketOf(time.UnixMilli(tt.ms), 6000), "ms=%d", tt.ms)
	}
}

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	return testutil.ToFloat64(c)
}
