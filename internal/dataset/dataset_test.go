package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/nilmlab/internal/infrastructure/influxdb"
)

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func TestDataset_Name(t *testing.T) {
	store := newFixture()
	assert.Equal(t, DefaultName, New("", store, store).Name())
	assert.Equal(t, "REDD", New("REDD", store, store).Name())
}

func TestDataset_Buildings(t *testing.T) {
	store := newFixture()
	ids, err := New("", store, store).Buildings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestDataset_CloseReleasesInReverseOrder(t *testing.T) {
	var order []string
	errFirst := errors.New("first failed")
	store := newFixture()

	ds := New("", store, store,
		closeFunc(func() error { order = append(order, "first"); return errFirst }),
		closeFunc(func() error { order = append(order, "second"); return nil }),
	)

	err := ds.Close()
	assert.ErrorIs(t, err, errFirst)
	assert.Equal(t, []string{"second", "first"}, order)

	assert.NoError(t, ds.Close(), "second close is a no-op")
	assert.Len(t, order, 2)
}

type fakeQuerier struct {
	got     [2]int
	samples []influxdb.Sample
	err     error
}

func (f *fakeQuerier) QueryReadings(_ context.Context, building, instance int, _, _ time.Time) ([]influxdb.Sample, error) {
	f.got = [2]int{building, instance}
	return f.samples, f.err
}

func TestInfluxReadings(t *testing.T) {
	local := time.FixedZone("BST", 3600)
	q := &fakeQuerier{samples: []influxdb.Sample{
		{Time: at(0).In(local), Watts: 12},
		{Time: at(6).In(local), Watts: 13},
	}}
	src := &InfluxReadings{client: q}

	rs, err := src.Readings(context.Background(), MeterKey{Building: 2, Instance: 7}, march())
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 7}, q.got)
	require.Len(t, rs, 2)
	assert.Equal(t, time.UTC, rs[0].Time.Location())
	assert.Equal(t, 13.0, rs[1].Watts)

	q.err = influxdb.ErrQueryFailed
	_, err = src.Readings(context.Background(), MeterKey{Building: 2, Instance: 7}, march())
	assert.ErrorIs(t, err, influxdb.ErrQueryFailed)
}
