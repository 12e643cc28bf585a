package dataset

import (
	"fmt"

	"github.com/nerrad567/nilmlab/internal/infrastructure/logging"
	"github.com/nerrad567/nilmlab/internal/infrastructure/metrics"
)

// ProbeMode decides how an appliance is classified as single- or multi-meter
// before selection.
type ProbeMode int

const (
	// ProbePerAppliance counts the meters of each appliance on its own.
	ProbePerAppliance ProbeMode = iota

	// ProbeWholeList counts the meters matching the entire requested list
	// for every appliance. Older experiment runs were produced this way;
	// it classifies every appliance as multi-meter whenever the list spans
	// more than one meter.
	ProbeWholeList
)

// ParseProbeMode parses the dataset.probe config value.
func ParseProbeMode(s string) (ProbeMode, error) {
	switch s {
	case "", "per_appliance":
		return ProbePerAppliance, nil
	case "whole_list":
		return ProbeWholeList, nil
	default:
		return 0, fmt.Errorf("unknown probe mode %q", s)
	}
}

func (p ProbeMode) String() string {
	switch p {
	case ProbePerAppliance:
		return "per_appliance"
	case ProbeWholeList:
		return "whole_list"
	default:
		return fmt.Sprintf("ProbeMode(%d)", int(p))
	}
}

// Handler selects meter groups from a Dataset and turns them into tables.
type Handler struct {
	dataset *Dataset
	probe   ProbeMode
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Handler.
type Option func(*Handler)

// WithProbeMode sets how appliances are classified before selection.
func WithProbeMode(p ProbeMode) Option {
	return func(h *Handler) { h.probe = p }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records operation metrics. Nil disables them.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler returns a handler over ds.
func NewHandler(ds *Dataset, opts ...Option) *Handler {
	h := &Handler{
		dataset: ds,
		probe:   ProbePerAppliance,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "dataset", "dataset", ds.Name())
	return h
}

// Dataset returns the dataset the handler reads.
func (h *Handler) Dataset() *Dataset { return h.dataset }

// ProbeMode returns the configured probe mode.
func (h *Handler) ProbeMode() ProbeMode { return h.probe }
