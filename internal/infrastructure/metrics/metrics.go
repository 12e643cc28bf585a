// Package metrics exposes Prometheus instrumentation for nilmlab runs.
//
// nilmlab is a batch tool, so metrics are kept in a private registry and
// written once at the end of a run in node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "nilmlab_"

	resultSuccess = "success"
	resultError   = "error"
)

// Metrics bundles the dataset handling metrics.
//
// All methods are safe on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	MetersSelected    prometheus.Histogram
	RowsMaterialized  prometheus.Counter
	CellsFilled       prometheus.Counter
	ReadingsIngested  *prometheus.CounterVec
}

// New constructs the metrics and registers them in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Dataset operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "operation_duration_seconds",
				Help:    "Dataset operation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"operation"},
		),
		MetersSelected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "meters_selected",
			Help:    "Meters in each selected meter group",
			Buckets: prometheus.LinearBuckets(1, 2, 12),
		}),
		RowsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "rows_materialized_total",
			Help: "Table rows produced by materialization",
		}),
		CellsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "cells_zero_filled_total",
			Help: "Absent samples replaced with zero",
		}),
		ReadingsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_ingested_total",
				Help: "Readings written by ingest, by backend",
			},
			[]string{"backend"},
		),
	}
	m.registry.MustRegister(
		m.OperationsTotal,
		m.OperationDuration,
		m.MetersSelected,
		m.RowsMaterialized,
		m.CellsFilled,
		m.ReadingsIngested,
	)
	return m
}

// Registry returns the registry holding every nilmlab metric.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation records one finished operation started at start.
//
// Typical use:
//
//	defer func(start time.Time) { h.metrics.ObserveOperation("select", start, err) }(time.Now())
func (m *Metrics) ObserveOperation(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.OperationsTotal.WithLabelValues(op, result).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveGroup records the size of a selected meter group.
func (m *Metrics) ObserveGroup(meters int) {
	if m == nil {
		return
	}
	m.MetersSelected.Observe(float64(meters))
}

// ObserveTable records a materialized table and how many cells were zero-filled.
func (m *Metrics) ObserveTable(rows, filled int) {
	if m == nil {
		return
	}
	m.RowsMaterialized.Add(float64(rows))
	m.CellsFilled.Add(float64(filled))
}

// AddIngested counts readings written to backend.
func (m *Metrics) AddIngested(backend string, n int) {
	if m == nil {
		return
	}
	m.ReadingsIngested.WithLabelValues(backend).Add(float64(n))
}

// WriteTextfile writes the registry to path for the node_exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
