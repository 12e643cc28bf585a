package dataset

import (
	"context"
	"fmt"
)

// Elec is one building's meters as seen through a fixed window.
//
// An Elec never changes after construction; reading a different window
// means asking the Dataset for another Elec.
type Elec struct {
	building int
	window   Window
	meters   MeterGroup
	readings ReadingSource
}

// Building returns the building id.
func (e *Elec) Building() int { return e.building }

// Window returns the window every read is restricted to.
func (e *Elec) Window() Window { return e.window }

// All returns every meter of the building.
func (e *Elec) All() MeterGroup { return e.meters }

// SiteMeters returns the aggregate meters in instance order.
func (e *Elec) SiteMeters() MeterGroup {
	var site []Meter
	for _, m := range e.meters.meters {
		if m.SiteMeter {
			site = append(site, m)
		}
	}
	return NewMeterGroup(site...)
}

// SelectByAppliances returns, in building order, every meter observing any
// of the given appliance types.
func (e *Elec) SelectByAppliances(types ...string) MeterGroup {
	var out []Meter
	for _, m := range e.meters.meters {
		if m.Observes(types...) {
			out = append(out, m)
		}
	}
	return NewMeterGroup(out...)
}

// SelectByAppliance returns the meters carrying appliance typ with the given
// instance number.
func (e *Elec) SelectByAppliance(typ string, instance int) MeterGroup {
	var out []Meter
	for _, m := range e.meters.meters {
		if m.ObservesInstance(typ, instance) {
			out = append(out, m)
		}
	}
	return NewMeterGroup(out...)
}

// CountMeters returns how many meters observe any of the given types.
func (e *Elec) CountMeters(types ...string) int {
	return e.SelectByAppliances(types...).Len()
}

// Readings returns the samples of one meter inside the window.
func (e *Elec) Readings(ctx context.Context, key MeterKey) ([]Reading, error) {
	if key.Building != e.building {
		return nil, fmt.Errorf("%w: meter %s is not in building %d", ErrNoMeterFound, key, e.building)
	}
	rs, err := e.readings.Readings(ctx, key, e.window)
	if err != nil {
		return nil, fmt.Errorf("reading meter %s over %s: %w", key, e.window, err)
	}
	return rs, nil
}
