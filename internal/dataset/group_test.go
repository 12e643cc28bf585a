package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeterGroup_UnionWithEmptyIsIdentity(t *testing.T) {
	g := NewMeterGroup(meter(1, 3, app("fridge", 1)), site(1, 1))

	assert.Equal(t, g.Keys(), g.Union(MeterGroup{}).Keys())
	assert.Equal(t, g.Keys(), MeterGroup{}.Union(g).Keys())
	assert.True(t, MeterGroup{}.Union(MeterGroup{}).Empty())
}

func TestMeterGroup_UnionDeduplicates(t *testing.T) {
	a := NewMeterGroup(meter(1, 3), meter(1, 5))
	b := NewMeterGroup(meter(1, 5), meter(1, 6))

	ab := a.Union(b)
	ba := b.Union(a)

	assert.Equal(t, keys(3, 5, 6), ab.Keys(), "receiver order first")
	assert.Equal(t, keys(5, 6, 3), ba.Keys())
	assert.ElementsMatch(t, ab.Keys(), ba.Keys(), "membership is commutative")
	assert.Equal(t, ab.Keys(), ab.Union(ab).Keys(), "union is idempotent")
}

func TestMeterGroup_UnionDoesNotModifyInputs(t *testing.T) {
	a := NewMeterGroup(meter(1, 3))
	b := NewMeterGroup(meter(1, 4))

	_ = a.Union(b)
	assert.Equal(t, keys(3), a.Keys())
	assert.Equal(t, keys(4), b.Keys())
}

func TestNewMeterGroup_KeepsFirstOccurrence(t *testing.T) {
	g := NewMeterGroup(meter(1, 3, app("fridge", 1)), meter(1, 3, app("kettle", 1)))

	assert.Equal(t, 1, g.Len())
	m, ok := g.Meter(MeterKey{Building: 1, Instance: 3})
	assert.True(t, ok)
	assert.Equal(t, "fridge", m.Label())
	assert.False(t, g.Contains(MeterKey{Building: 1, Instance: 4}))
}

func TestMeter_Label(t *testing.T) {
	assert.Equal(t, SiteMeterLabel, site(1, 1).Label())
	assert.Equal(t, "washer dryer", meter(1, 2, app("washer dryer", 1), app("light", 3)).Label())
	assert.Equal(t, "b1/m9", meter(1, 9).Label())
}

func TestMeter_Observes(t *testing.T) {
	m := meter(1, 2, app("washer dryer", 1), app("light", 3))

	assert.True(t, m.Observes("light"))
	assert.True(t, m.Observes("kettle", "washer dryer"))
	assert.False(t, m.Observes())
	assert.True(t, m.ObservesInstance("light", 3))
	assert.False(t, m.ObservesInstance("light", 1))
}
