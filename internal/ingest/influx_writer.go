package ingest

import (
	"context"
	"time"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/infrastructure/influxdb"
)

// pointWriter is the part of *influxdb.Client used for ingest.
type pointWriter interface {
	WriteReading(building, instance int, ts time.Time, watts float64)
	Flush()
}

// InfluxWriter is a ReadingWriter that queues readings on the InfluxDB
// batched write API. Write failures arrive through the client's error
// callback, not from WriteReadings.
type InfluxWriter struct {
	client pointWriter
}

// NewInfluxWriter wraps a connected client.
func NewInfluxWriter(client *influxdb.Client) *InfluxWriter {
	return &InfluxWriter{client: client}
}

// WriteReadings implements ReadingWriter.
func (w *InfluxWriter) WriteReadings(ctx context.Context, key dataset.MeterKey, readings []dataset.Reading) (int, error) {
	for n, r := range readings {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		w.client.WriteReading(key.Building, key.Instance, r.Time, r.Watts)
	}
	return len(readings), nil
}

// Flush blocks until queued readings are sent.
func (w *InfluxWriter) Flush() {
	w.client.Flush()
}
