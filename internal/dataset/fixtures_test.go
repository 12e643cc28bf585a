package dataset

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// t0 is 2013-03-01 00:00 UTC, a multiple of the 6 second sample period.
var t0 = time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int) time.Time { return t0.Add(time.Duration(seconds) * time.Second) }

type memStore struct {
	meters   map[int][]Meter
	readings map[MeterKey][]Reading
	closed   bool
}

func (s *memStore) Buildings(context.Context) ([]int, error) {
	var ids []int
	for b := 1; b <= 10; b++ {
		if _, ok := s.meters[b]; ok {
			ids = append(ids, b)
		}
	}
	return ids, nil
}

func (s *memStore) Meters(_ context.Context, building int) ([]Meter, error) {
	m, ok := s.meters[building]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBuildingNotFound, building)
	}
	return m, nil
}

func (s *memStore) Readings(_ context.Context, key MeterKey, w Window) ([]Reading, error) {
	var out []Reading
	for _, r := range s.readings[key] {
		if w.Contains(r.Time) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Close() error {
	s.closed = true
	return nil
}

func meter(building, instance int, apps ...Appliance) Meter {
	return Meter{Key: MeterKey{Building: building, Instance: instance}, Appliances: apps}
}

func site(building, instance int) Meter {
	m := meter(building, instance)
	m.SiteMeter = true
	return m
}

func app(typ string, instance int) Appliance { return Appliance{Type: typ, Instance: instance} }

// newFixture builds three buildings:
//
//	1: two mains, fridge x2, kettle, microwave, sockets x2, freezer (instance 2 only)
//	2: no mains, kettle, light
//	3: one mains, sockets 1..5, kettle
func newFixture() *memStore {
	return &memStore{
		meters: map[int][]Meter{
			1: {
				site(1, 1),
				site(1, 2),
				meter(1, 3, app("fridge", 1)),
				meter(1, 4, app("fridge", 2)),
				meter(1, 5, app("kettle", 1)),
				meter(1, 6, app("microwave", 1)),
				meter(1, 7, app("sockets", 1)),
				meter(1, 8, app("sockets", 2)),
				meter(1, 9, app("freezer", 2)),
			},
			2: {
				meter(2, 1, app("kettle", 1)),
				meter(2, 2, app("light", 1)),
			},
			3: {
				site(3, 1),
				meter(3, 2, app("sockets", 1)),
				meter(3, 3, app("sockets", 2)),
				meter(3, 4, app("sockets", 3)),
				meter(3, 5, app("sockets", 4)),
				meter(3, 6, app("sockets", 5)),
				meter(3, 7, app("kettle", 1)),
			},
		},
		readings: map[MeterKey][]Reading{},
	}
}

func (s *memStore) add(key MeterKey, start time.Time, watts ...float64) {
	for i, w := range watts {
		s.readings[key] = append(s.readings[key], Reading{Time: start.Add(time.Duration(i) * 6 * time.Second), Watts: w})
	}
}

func march() Window {
	return Window{Start: t0, End: t0.AddDate(0, 1, 0)}
}

func newTestHandler(t *testing.T, store *memStore, opts ...Option) *Handler {
	t.Helper()
	ds := New("test", store, store, store)
	t.Cleanup(func() { require.NoError(t, ds.Close()) })
	return NewHandler(ds, opts...)
}

func keys(instances ...int) []MeterKey {
	out := make([]MeterKey, len(instances))
	for i, inst := range instances {
		out[i] = MeterKey{Building: 1, Instance: inst}
	}
	return out
}
