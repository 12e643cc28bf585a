package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultName is the dataset name used when the store does not record one.
const DefaultName = "UK DALE"

// Catalog enumerates buildings and their meters.
type Catalog interface {
	// Buildings returns building ids in ascending order.
	Buildings(ctx context.Context) ([]int, error)

	// Meters returns the meters of building ordered by instance, or
	// ErrBuildingNotFound.
	Meters(ctx context.Context, building int) ([]Meter, error)
}

// ReadingSource returns the samples of one meter inside a window, oldest first.
type ReadingSource interface {
	Readings(ctx context.Context, key MeterKey, w Window) ([]Reading, error)
}

// Dataset is a named, read-only metering dataset.
//
// A Dataset holds no active window: every read is scoped by the Window
// passed to Elec. It is safe for concurrent use when its Catalog and
// ReadingSource are.
type Dataset struct {
	name     string
	catalog  Catalog
	readings ReadingSource
	closers  []io.Closer
}

// New builds a dataset from its collaborators. Closers are released, in
// reverse order, by Close.
func New(name string, catalog Catalog, readings ReadingSource, closers ...io.Closer) *Dataset {
	if name == "" {
		name = DefaultName
	}
	return &Dataset{
		name:     name,
		catalog:  catalog,
		readings: readings,
		closers:  closers,
	}
}

// Name returns the dataset's display name.
func (d *Dataset) Name() string { return d.name }

// Buildings returns the building ids in the catalog.
func (d *Dataset) Buildings(ctx context.Context) ([]int, error) {
	ids, err := d.catalog.Buildings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}
	return ids, nil
}

// Elec returns the electricity graph of building restricted to w.
func (d *Dataset) Elec(ctx context.Context, building int, w Window) (*Elec, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	meters, err := d.catalog.Meters(ctx, building)
	if err != nil {
		return nil, fmt.Errorf("loading meters of building %d: %w", building, err)
	}
	return &Elec{
		building: building,
		window:   w,
		meters:   NewMeterGroup(meters...),
		readings: d.readings,
	}, nil
}

// Close releases the underlying stores.
func (d *Dataset) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
