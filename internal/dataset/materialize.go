package dataset

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/nerrad567/nilmlab/internal/frame"
)

// Materialize turns group into a table sampled every samplePeriod seconds.
//
// Rows are bucket start times aligned to the Unix epoch, from the first to
// the last bucket holding a reading of any meter in w. A bucket's value is
// the mean of its readings. Columns follow group order and are named by
// MeterKey.String(). Every bucket a meter has no reading in is set to 0.
//
// A group whose meters have no readings in w yields a table with its
// columns and no rows.
func (h *Handler) Materialize(ctx context.Context, group MeterGroup, w Window, samplePeriod int) (table *frame.Table, err error) {
	defer func(start time.Time) { h.metrics.ObserveOperation("materialize", start, err) }(time.Now())

	if samplePeriod < 1 {
		return nil, fmt.Errorf("%w: %d seconds", ErrInvalidSamplePeriod, samplePeriod)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	keys := group.Keys()
	columns := make([]string, len(keys))
	series := make([][]Reading, len(keys))
	periodMs := int64(samplePeriod) * 1000

	var first, last int64
	seen := false
	for i, key := range keys {
		columns[i] = key.String()

		rs, err := h.dataset.readings.Readings(ctx, key, w)
		if err != nil {
			return nil, fmt.Errorf("reading meter %s over %s: %w", key, w, err)
		}
		rs = clip(rs, w)
		series[i] = rs
		if len(rs) == 0 {
			continue
		}

		lo, hi := bucketOf(rs[0].Time, periodMs), bucketOf(rs[len(rs)-1].Time, periodMs)
		if !seen || lo < first {
			first = lo
		}
		if !seen || hi > last {
			last = hi
		}
		seen = true
	}

	var index []time.Time
	if seen {
		index = make([]time.Time, last-first+1)
		for i := range index {
			index[i] = time.UnixMilli((first + int64(i)) * periodMs).UTC()
		}
	}

	table, err = frame.New(index, columns)
	if err != nil {
		return nil, fmt.Errorf("building table: %w", err)
	}
	for j, rs := range series {
		fillColumn(table, j, rs, first, periodMs)
	}

	filled := table.FillMissing(0)
	h.metrics.ObserveTable(table.Rows(), filled)
	h.logger.Debug("meter group materialized",
		"meters", len(keys),
		"rows", table.Rows(),
		"sample_period", samplePeriod,
		"zero_filled", filled,
	)
	return table, nil
}

// fillColumn writes the per-bucket mean of sorted readings into column j.
func fillColumn(table *frame.Table, j int, rs []Reading, first, periodMs int64) {
	var vals []float64
	current := int64(0)
	flush := func() {
		if len(vals) > 0 {
			table.Set(int(current-first), j, stat.Mean(vals, nil))
			vals = vals[:0]
		}
	}
	for _, r := range rs {
		b := bucketOf(r.Time, periodMs)
		if len(vals) > 0 && b != current {
			flush()
		}
		current = b
		vals = append(vals, r.Watts)
	}
	flush()
}

// clip drops readings outside w and returns them sorted by time. Sources
// normally return exactly the window already.
func clip(rs []Reading, w Window) []Reading {
	sorted := true
	out := rs[:0:0]
	for i, r := range rs {
		if !w.Contains(r.Time) {
			continue
		}
		if i > 0 && r.Time.Before(rs[i-1].Time) {
			sorted = false
		}
		out = append(out, r)
	}
	if !sorted {
		sortReadings(out)
	}
	return out
}

func bucketOf(t time.Time, periodMs int64) int64 {
	ms := t.UnixMilli()
	b := ms / periodMs
	if ms%periodMs != 0 && ms < 0 {
		b--
	}
	return b
}

func sortReadings(rs []Reading) {
	slices.SortStableFunc(rs, func(a, b Reading) int { return a.Time.Compare(b.Time) })
}
