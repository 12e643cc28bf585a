package dataset

import "errors"

// Errors returned by dataset selection, materialization and normalization.
// Callers check them with errors.Is; they are always wrapped with context.
var (
	// ErrNoSiteMeter is returned when a building has no aggregate (mains) meter.
	ErrNoSiteMeter = errors.New("dataset: building has no site meter")

	// ErrNoMeterFound is returned when an appliance name, or the canonical
	// instance chosen for it, matches no meter in the building. A meter that
	// exists but has no readings in the window is not this error.
	ErrNoMeterFound = errors.New("dataset: no meter found")

	// ErrLabelNormalization is returned when column labels cannot be mapped
	// one-to-one onto unique normalized labels.
	ErrLabelNormalization = errors.New("dataset: label normalization failed")

	// ErrInvalidWindow is returned for a window whose end is not after its start.
	ErrInvalidWindow = errors.New("dataset: invalid window")

	// ErrInvalidSamplePeriod is returned for a sample period below one second.
	ErrInvalidSamplePeriod = errors.New("dataset: invalid sample period")

	// ErrBuildingNotFound is returned when the catalog has no such building.
	ErrBuildingNotFound = errors.New("dataset: building not found")
)
