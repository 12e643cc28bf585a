package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Tag and field names of a reading point.
const (
	tagBuilding = "building"
	tagMeter    = "meter"
	fieldWatts  = "watts"
)

// WriteReading queues one active power sample for meter instance in building.
//
// The write is non-blocking; points are batched and failures are reported
// through the SetOnError callback. Call Flush before reading back.
//
// Example:
//
//	client.WriteReading(1, 5, ts, 2412.0) // building 1, channel 5 (kettle)
func (c *Client) WriteReading(building, instance int, ts time.Time, watts float64) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(readingPoint(c.cfg.Measurement, building, instance, ts, watts))
}

func readingPoint(measurement string, building, instance int, ts time.Time, watts float64) *write.Point {
	return write.NewPoint(
		measurement,
		map[string]string{
			tagBuilding: strconv.Itoa(building),
			tagMeter:    strconv.Itoa(instance),
		},
		map[string]interface{}{
			fieldWatts: watts,
		},
		ts,
	)
}
