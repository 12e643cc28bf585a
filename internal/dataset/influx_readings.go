package dataset

import (
	"context"
	"time"

	"github.com/nerrad567/nilmlab/internal/infrastructure/influxdb"
)

// readingQuerier is the part of *influxdb.Client used for reads.
type readingQuerier interface {
	QueryReadings(ctx context.Context, building, instance int, start, end time.Time) ([]influxdb.Sample, error)
}

// InfluxReadings is a ReadingSource backed by InfluxDB. The meter catalog
// still comes from SQLite.
type InfluxReadings struct {
	client readingQuerier
}

// NewInfluxReadings wraps a connected client.
func NewInfluxReadings(client *influxdb.Client) *InfluxReadings {
	return &InfluxReadings{client: client}
}

// Readings implements ReadingSource.
func (r *InfluxReadings) Readings(ctx context.Context, key MeterKey, w Window) ([]Reading, error) {
	samples, err := r.client.QueryReadings(ctx, key.Building, key.Instance, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	out := make([]Reading, len(samples))
	for i, s := range samples {
		out[i] = Reading{Time: s.Time.UTC(), Watts: s.Watts}
	}
	return out, nil
}
