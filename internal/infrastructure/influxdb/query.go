package influxdb

import (
	"context"
	"fmt"
	"time"
)

// Sample is one reading returned by QueryReadings.
type Sample struct {
	Time  time.Time
	Watts float64
}

// QueryReadings returns the samples of one meter in [start, end), oldest first.
func (c *Client) QueryReadings(ctx context.Context, building, instance int, start, end time.Time) ([]Sample, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	result, err := c.queryAPI.Query(ctx, readingsQuery(c.cfg.Bucket, c.cfg.Measurement, building, instance, start, end))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	var samples []Sample
	for result.Next() {
		rec := result.Record()
		watts, ok := rec.Value().(float64)
		if !ok {
			return nil, fmt.Errorf("%w: field %s is %T, want float64", ErrQueryFailed, fieldWatts, rec.Value())
		}
		samples = append(samples, Sample{Time: rec.Time(), Watts: watts})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return samples, nil
}

// readingsQuery builds the Flux query for one meter. Flux range stop is
// exclusive, matching the half-open window.
func readingsQuery(bucket, measurement string, building, instance int, start, end time.Time) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %q and r.%s == "%d" and r.%s == "%d" and r._field == %q)
  |> sort(columns: ["_time"])`,
		bucket,
		start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano),
		measurement, tagBuilding, building, tagMeter, instance, fieldWatts,
	)
}
