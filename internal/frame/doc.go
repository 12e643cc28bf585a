// Package frame holds the time-indexed numeric table produced by dataset
// preparation: one row per sample instant, one float64 column per meter.
//
// Missing samples are stored as NaN until FillMissing replaces them.
// Storage is a gonum mat.Dense in row-major order.
package frame
