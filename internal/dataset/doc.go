// Package dataset selects meters from a NILM metering dataset and turns
// them into normalized tables.
//
// A Dataset pairs a Catalog (buildings, meters, appliances) with a
// ReadingSource (power samples). Reads are always scoped by an explicit
// Window: Dataset.Elec returns an immutable, window-bound view of one
// building, so a Dataset can serve several windows at once.
//
// The Handler implements the preparation pipeline:
//
//	group, err := h.SelectMeterGroup(ctx, dataset.Request{...})
//	table, err := h.Materialize(ctx, group, window, 6)
//	table, labels, err := h.Normalize(table, group, appliances)
//
// ReadSelectedAppliances, ReadMains and ReadAllMeters combine selection
// and materialization. Failures are reported with the sentinel errors in
// errors.go.
package dataset
