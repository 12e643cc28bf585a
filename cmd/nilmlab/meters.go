package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/nerrad567/nilmlab/internal/dataset"
)

// Bounds used when meters is run without a window.
const (
	allTimeStart = "1-1-1970"
	allTimeEnd   = "1-1-2100"
)

// meters lists the meters of a building, or the group a selection resolves to.
func (a *app) meters(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("meters", pflag.ContinueOnError)
	building := flags.IntP("building", "b", 0, "building to list")
	appliances := flags.StringSliceP("appliances", "a", nil, "resolve this appliance selection instead of listing every meter")
	mains := flags.Bool("mains", false, "add the site meter to the selection")
	probe := flags.String("probe", a.cfg.Dataset.Probe, "probe mode: per_appliance or whole_list")
	start := flags.String("start", allTimeStart, "window start (M-D-YYYY)")
	end := flags.String("end", allTimeEnd, "window end (M-D-YYYY)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *building < 1 {
		return fmt.Errorf("meters: --building is required")
	}

	w, err := dataset.ParseWindow(*start, *end)
	if err != nil {
		return fmt.Errorf("meters: %w", err)
	}

	ds, err := a.openDataset(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ds.Close(); closeErr != nil {
			a.log.Error("error closing dataset", "error", closeErr)
		}
	}()

	var group dataset.MeterGroup
	if len(*appliances) > 0 {
		h, err := a.handler(ds, *probe)
		if err != nil {
			return fmt.Errorf("meters: %w", err)
		}
		group, err = h.SelectMeterGroup(ctx, dataset.Request{
			Appliances:   *appliances,
			Window:       w,
			Building:     *building,
			IncludeMains: *mains,
		})
		if err != nil {
			return err
		}
	} else {
		elec, err := ds.Elec(ctx, *building, w)
		if err != nil {
			return err
		}
		group = elec.All()
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METER\tLABEL\tAPPLIANCES")
	for _, m := range group.Meters() {
		names := make([]string, 0, len(m.Appliances))
		for _, ap := range m.Appliances {
			names = append(names, fmt.Sprintf("%s#%d", ap.Type, ap.Instance))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Key, m.Label(), strings.Join(names, ", "))
	}
	return tw.Flush()
}
