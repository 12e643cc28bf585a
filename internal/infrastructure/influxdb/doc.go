// Package influxdb provides InfluxDB connectivity for meter readings.
//
// It wraps the official influxdb-client-go v2 library. Readings are stored
// in one measurement (default "meter_power") with tags building and meter
// and a single float field "watts".
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteReading(1, 5, ts, 2412.0)
//	client.Flush()
//
//	samples, err := client.QueryReadings(ctx, 1, 5, start, end)
//
// # Error Handling
//
// Writes are non-blocking; batch failures are delivered to the SetOnError
// callback wrapped in ErrWriteFailed. Connection and query errors are
// returned directly.
package influxdb
