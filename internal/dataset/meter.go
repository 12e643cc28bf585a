package dataset

import (
	"fmt"
	"time"
)

// SiteMeterLabel is the label of the whole-building aggregate meter.
const SiteMeterLabel = "Site meter"

// MeterKey identifies one metering channel.
type MeterKey struct {
	Building int
	Instance int // channel number within the building
}

// String is the raw column name a meter gets in a materialized table.
func (k MeterKey) String() string {
	return fmt.Sprintf("b%d/m%d", k.Building, k.Instance)
}

// Appliance is an appliance attached to a meter. Instance numbers meters of
// the same appliance type within a building, starting at 1.
type Appliance struct {
	Type     string
	Instance int
}

// Meter is a single measurement channel and the appliances it observes.
type Meter struct {
	Key        MeterKey
	SiteMeter  bool
	Appliances []Appliance
}

// Label is the meter's column label: SiteMeterLabel for the aggregate, the
// first appliance type otherwise, or the key when the meter has neither.
func (m Meter) Label() string {
	switch {
	case m.SiteMeter:
		return SiteMeterLabel
	case len(m.Appliances) > 0:
		return m.Appliances[0].Type
	default:
		return m.Key.String()
	}
}

// Observes reports whether any attached appliance has one of the given types.
func (m Meter) Observes(types ...string) bool {
	for _, a := range m.Appliances {
		for _, t := range types {
			if a.Type == t {
				return true
			}
		}
	}
	return false
}

// ObservesInstance reports whether the meter carries appliance typ with the
// given instance number.
func (m Meter) ObservesInstance(typ string, instance int) bool {
	for _, a := range m.Appliances {
		if a.Type == typ && a.Instance == instance {
			return true
		}
	}
	return false
}

// Reading is one active power sample.
type Reading struct {
	Time  time.Time
	Watts float64
}
