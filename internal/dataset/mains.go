package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/nilmlab/internal/frame"
)

// mainsForUnion returns the single site meter representing the building in
// a selection. Buildings with several mains channels contribute only the
// first so whole-home power is not counted twice.
func mainsForUnion(elec *Elec) (MeterGroup, error) {
	site := elec.SiteMeters()
	switch site.Len() {
	case 0:
		return MeterGroup{}, fmt.Errorf("%w: building %d", ErrNoSiteMeter, elec.Building())
	case 1:
		return site, nil
	default:
		return NewMeterGroup(site.meters[0]), nil
	}
}

// mainsForRead returns every site meter of the building.
func mainsForRead(elec *Elec) (MeterGroup, error) {
	site := elec.SiteMeters()
	if site.Empty() {
		return MeterGroup{}, fmt.Errorf("%w: building %d", ErrNoSiteMeter, elec.Building())
	}
	return site, nil
}

// ReadMains materializes all site meters of building over w.
func (h *Handler) ReadMains(ctx context.Context, w Window, samplePeriod, building int) (table *frame.Table, group MeterGroup, err error) {
	defer func(start time.Time) { h.metrics.ObserveOperation("read_mains", start, err) }(time.Now())

	elec, err := h.dataset.Elec(ctx, building, w)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	group, err = mainsForRead(elec)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	table, err = h.Materialize(ctx, group, w, samplePeriod)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	return table, group, nil
}

// ReadAllMeters materializes every meter of building over w.
func (h *Handler) ReadAllMeters(ctx context.Context, w Window, samplePeriod, building int) (table *frame.Table, group MeterGroup, err error) {
	defer func(start time.Time) { h.metrics.ObserveOperation("read_all", start, err) }(time.Now())

	elec, err := h.dataset.Elec(ctx, building, w)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	group = elec.All()
	table, err = h.Materialize(ctx, group, w, samplePeriod)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	return table, group, nil
}
