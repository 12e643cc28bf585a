package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/nilmlab/internal/frame"
)

// Request describes one appliance selection.
type Request struct {
	Appliances   []string
	Window       Window
	Building     int
	SamplePeriod int // seconds; used when the selection is materialized
	IncludeMains bool
}

// SelectMeterGroup resolves the meters for the requested appliances.
//
// Every appliance name must match at least one meter in the building.
// Appliances observed by more than one meter are narrowed to a canonical
// meter (see canonicalInstance); the rest are selected together. With
// IncludeMains the building's representative site meter is added.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - req: Appliances, building and window to select from
//
// Returns:
//   - MeterGroup: plain selection, then canonical selections, then mains
//   - error: ErrNoMeterFound, ErrNoSiteMeter, ErrBuildingNotFound or
//     ErrInvalidWindow (wrapped), or a store error
func (h *Handler) SelectMeterGroup(ctx context.Context, req Request) (group MeterGroup, err error) {
	defer func(start time.Time) { h.metrics.ObserveOperation("select", start, err) }(time.Now())

	h.logger.Debug("selecting meter group",
		"appliances", req.Appliances,
		"building", req.Building,
		"window", req.Window.String(),
		"include_mains", req.IncludeMains,
	)

	elec, err := h.dataset.Elec(ctx, req.Building, req.Window)
	if err != nil {
		return MeterGroup{}, err
	}

	group, err = h.selectFrom(elec, req.Appliances, req.IncludeMains)
	if err != nil {
		return MeterGroup{}, err
	}

	h.metrics.ObserveGroup(group.Len())
	h.logger.Debug("meter group selected", "meters", group.Len(), "labels", group.Labels())
	return group, nil
}

// ReadSelectedAppliances selects the requested appliances and materializes
// them at req.SamplePeriod.
func (h *Handler) ReadSelectedAppliances(ctx context.Context, req Request) (*frame.Table, MeterGroup, error) {
	group, err := h.SelectMeterGroup(ctx, req)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	table, err := h.Materialize(ctx, group, req.Window, req.SamplePeriod)
	if err != nil {
		return nil, MeterGroup{}, err
	}
	h.logger.Debug("selected appliances read", "rows", table.Rows())
	return table, group, nil
}

func (h *Handler) selectFrom(elec *Elec, appliances []string, includeMains bool) (MeterGroup, error) {
	for _, name := range appliances {
		if elec.CountMeters(name) == 0 {
			return MeterGroup{}, fmt.Errorf("%w: appliance %q in building %d", ErrNoMeterFound, name, elec.Building())
		}
	}

	single, multi := h.partition(elec, appliances)

	var special MeterGroup
	for _, name := range multi {
		inst := canonicalInstance(name, elec.Building())
		g := elec.SelectByAppliance(name, inst)
		if g.Empty() {
			return MeterGroup{}, fmt.Errorf("%w: appliance %q instance %d in building %d",
				ErrNoMeterFound, name, inst, elec.Building())
		}
		special = special.Union(g)
	}

	var plain MeterGroup
	if len(single) > 0 {
		plain = elec.SelectByAppliances(single...)
	}

	group := plain.Union(special)
	if includeMains {
		mains, err := mainsForUnion(elec)
		if err != nil {
			return MeterGroup{}, err
		}
		group = group.Union(mains)
	}
	return group, nil
}

// partition splits appliance names by how many meters the probe matches.
func (h *Handler) partition(elec *Elec, appliances []string) (single, multi []string) {
	for _, name := range appliances {
		probe := []string{name}
		if h.probe == ProbeWholeList {
			probe = appliances
		}
		if elec.CountMeters(probe...) > 1 {
			multi = append(multi, name)
		} else {
			single = append(single, name)
		}
	}
	return single, multi
}

// canonicalInstance is the appliance instance used when an appliance is
// observed by several meters. Building 3's sockets are calibrated on the
// fourth socket meter.
func canonicalInstance(appliance string, building int) int {
	if appliance == "sockets" && building == 3 {
		return 4
	}
	return 1
}
