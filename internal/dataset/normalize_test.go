package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/nilmlab/internal/frame"
)

// tableFor builds a one-row table whose columns are the group's raw keys.
func tableFor(t *testing.T, group MeterGroup) *frame.Table {
	t.Helper()
	cols := make([]string, 0, group.Len())
	for _, k := range group.Keys() {
		cols = append(cols, k.String())
	}
	tbl, err := frame.New([]time.Time{t0}, cols)
	require.NoError(t, err)
	tbl.FillMissing(0)
	return tbl
}

func TestNormalize_DuplicateLabelsGetSequenceSuffixes(t *testing.T) {
	group := NewMeterGroup(
		meter(1, 3, app("fridge", 1)),
		meter(1, 4, app("fridge", 2)),
		meter(1, 5, app("kettle", 1)),
	)

	out, labels, err := Normalize(tableFor(t, group), group, []string{"fridge", "kettle"})
	require.NoError(t, err)

	assert.Equal(t, []string{"fridge_0", "fridge_1", "kettle_0"}, out.Columns())
	assert.Equal(t, LabelMap{
		"fridge_0": {Building: 1, Instance: 3},
		"fridge_1": {Building: 1, Instance: 4},
		"kettle_0": {Building: 1, Instance: 5},
	}, labels)
}

func TestNormalize_CountersArePerLabelAndLeftToRight(t *testing.T) {
	group := NewMeterGroup(
		meter(1, 5, app("kettle", 1)),
		meter(1, 3, app("fridge", 1)),
		meter(1, 6, app("kettle", 2)),
		meter(1, 4, app("fridge", 2)),
	)

	out, _, err := Normalize(tableFor(t, group), group, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"kettle_0", "fridge_0", "kettle_1", "fridge_1"}, out.Columns())
}

func TestNormalize_CountersResetPerCall(t *testing.T) {
	group := NewMeterGroup(meter(1, 3, app("fridge", 1)))

	for i := 0; i < 2; i++ {
		out, _, err := Normalize(tableFor(t, group), group, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"fridge_0"}, out.Columns())
	}
}

func TestNormalize_SiteMeter(t *testing.T) {
	group := NewMeterGroup(meter(1, 5, app("kettle", 1)), site(1, 1))

	t.Run("not requested keeps the sentinel", func(t *testing.T) {
		out, labels, err := Normalize(tableFor(t, group), group, []string{"kettle"})
		require.NoError(t, err)
		assert.Equal(t, []string{"kettle_0", SiteMeterLabel}, out.Columns())
		assert.Equal(t, MeterKey{Building: 1, Instance: 1}, labels[SiteMeterLabel])
	})

	t.Run("requested by name is suffixed", func(t *testing.T) {
		out, _, err := Normalize(tableFor(t, group), group, []string{"kettle", SiteMeterLabel})
		require.NoError(t, err)
		assert.Equal(t, []string{"kettle_0", "Site meter_0"}, out.Columns())
	})
}

func TestNormalize_RenamesInPlace(t *testing.T) {
	group := NewMeterGroup(meter(1, 5, app("kettle", 1)))
	tbl := tableFor(t, group)

	out, _, err := Normalize(tbl, group, nil)
	require.NoError(t, err)
	assert.Same(t, tbl, out)
	assert.Equal(t, []string{"kettle_0"}, tbl.Columns())
}

func TestNormalize_Errors(t *testing.T) {
	t.Run("column without a meter", func(t *testing.T) {
		group := NewMeterGroup(meter(1, 5, app("kettle", 1)))
		tbl, err := frame.New([]time.Time{t0}, []string{"b1/m5", "b1/m99"})
		require.NoError(t, err)

		_, _, err = Normalize(tbl, group, nil)
		assert.ErrorIs(t, err, ErrLabelNormalization)
	})

	t.Run("two unrequested site meters collide", func(t *testing.T) {
		group := NewMeterGroup(site(1, 1), site(1, 2))
		tbl := tableFor(t, group)

		_, _, err := Normalize(tbl, group, nil)
		assert.ErrorIs(t, err, ErrLabelNormalization)
		assert.Equal(t, []string{"b1/m1", "b1/m2"}, tbl.Columns(), "failed call leaves the table untouched")
	})

	t.Run("requested site meters are suffixed apart", func(t *testing.T) {
		group := NewMeterGroup(site(1, 1), site(1, 2))
		out, _, err := Normalize(tableFor(t, group), group, []string{SiteMeterLabel})
		require.NoError(t, err)
		assert.Equal(t, []string{"Site meter_0", "Site meter_1"}, out.Columns())
	})
}

// For any list of distinct appliances that all match, normalization yields
// exactly one label per column.
func TestNormalize_OneLabelPerColumn(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	for _, m := range store.meters[1] {
		store.add(m.Key, t0, 1, 2, 3)
	}
	h := newTestHandler(t, store)

	lists := [][]string{
		{"kettle"},
		{"fridge", "kettle"},
		{"sockets", "microwave", "freezer"},
		{"fridge", "kettle", "microwave", "sockets", "freezer"},
	}
	for _, probe := range []ProbeMode{ProbePerAppliance, ProbeWholeList} {
		h.probe = probe
		for _, appliances := range lists {
			for _, mains := range []bool{false, true} {
				table, group, err := h.ReadSelectedAppliances(ctx, Request{
					Appliances: appliances, Building: 1, Window: march(), SamplePeriod: 6, IncludeMains: mains,
				})
				if probe == ProbeWholeList && contains(appliances, "freezer") && len(appliances) > 1 {
					assert.ErrorIs(t, err, ErrNoMeterFound)
					continue
				}
				require.NoError(t, err, "%s %v", probe, appliances)

				before := table.Cols()
				out, labels, err := h.Normalize(table, group, appliances)
				require.NoError(t, err, "%s %v", probe, appliances)
				assert.Equal(t, before, out.Cols())
				assert.Len(t, labels, before)
			}
		}
	}
}

func TestNormalizeLabels(t *testing.T) {
	got := normalizeLabels([]string{"fridge", SiteMeterLabel, "fridge", "kettle"}, false)
	assert.Equal(t, []string{"fridge_0", SiteMeterLabel, "fridge_1", "kettle_0"}, got)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
