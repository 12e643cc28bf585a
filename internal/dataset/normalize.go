package dataset

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nerrad567/nilmlab/internal/frame"
)

// LabelMap maps each normalized column label to the meter it came from.
type LabelMap map[string]MeterKey

// Normalize renames the columns of table to unique labels derived from the
// meters of group.
//
// Each column's raw label is its meter's Label. The site meter keeps the
// label "Site meter" unless that label is listed in kept; every other label
// L becomes L_0, L_1, ... in column order, counted per label. The table is
// renamed in place and returned with the map from new label to meter key.
//
// Fails with ErrLabelNormalization when a column has no meter in group or
// the produced labels are not one unique label per column.
func Normalize(table *frame.Table, group MeterGroup, kept []string) (*frame.Table, LabelMap, error) {
	byColumn := make(map[string]Meter, group.Len())
	for _, m := range group.meters {
		byColumn[m.Key.String()] = m
	}

	columns := table.Columns()
	labels := make([]string, len(columns))
	keys := make([]MeterKey, len(columns))
	for i, c := range columns {
		m, ok := byColumn[c]
		if !ok {
			return nil, nil, fmt.Errorf("%w: column %q has no meter in the group", ErrLabelNormalization, c)
		}
		labels[i] = m.Label()
		keys[i] = m.Key
	}

	normalized := normalizeLabels(labels, slices.Contains(kept, SiteMeterLabel))
	if len(normalized) != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d labels for %d columns", ErrLabelNormalization, len(normalized), len(labels))
	}

	if err := table.SetColumns(normalized); err != nil {
		if errors.Is(err, frame.ErrDuplicateColumn) {
			return nil, nil, fmt.Errorf("%w: %w", ErrLabelNormalization, err)
		}
		return nil, nil, err
	}

	labelMap := make(LabelMap, len(normalized))
	for i, l := range normalized {
		labelMap[l] = keys[i]
	}
	return table, labelMap, nil
}

// normalizeLabels applies the per-label sequence suffixes.
func normalizeLabels(labels []string, keepSiteMeter bool) []string {
	counts := make(map[string]int, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == SiteMeterLabel && !keepSiteMeter {
			out = append(out, SiteMeterLabel)
			continue
		}
		n := counts[l]
		counts[l] = n + 1
		out = append(out, fmt.Sprintf("%s_%d", l, n))
	}
	return out
}

// Normalize is the package Normalize with logging and metrics.
func (h *Handler) Normalize(table *frame.Table, group MeterGroup, kept []string) (out *frame.Table, labels LabelMap, err error) {
	defer func(start time.Time) { h.metrics.ObserveOperation("normalize", start, err) }(time.Now())

	h.logger.Debug("normalizing columns", "columns", table.Columns(), "labels", group.Labels())
	out, labels, err = Normalize(table, group, kept)
	if err != nil {
		h.logger.Error("label normalization failed", "error", err)
		return nil, nil, err
	}
	h.logger.Info("columns normalized", "labels", out.Columns())
	return out, labels, nil
}
