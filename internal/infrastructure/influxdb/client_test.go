package influxdb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/nilmlab/internal/infrastructure/config"
	"github.com/nerrad567/nilmlab/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for a local dev InfluxDB. URL and token
// can be overridden with NILMLAB_INFLUXDB_URL and NILMLAB_INFLUXDB_TOKEN.
func testConfig() config.InfluxDBConfig {
	cfg := config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "nilmlab-dev-token",
		Org:           "nilmlab",
		Bucket:        "readings",
		Measurement:   "meter_power_test",
		BatchSize:     100,
		FlushInterval: 1,
	}
	if v := os.Getenv("NILMLAB_INFLUXDB_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("NILMLAB_INFLUXDB_TOKEN"); v != "" {
		cfg.Token = v
	}
	return cfg
}

// connectOrSkip connects to the dev InfluxDB or skips the test.
func connectOrSkip(t *testing.T) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(context.Background(), testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, influxdb.ErrDisabled)
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	_, err := influxdb.Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, influxdb.ErrConnectionFailed)
}

func TestClose_Idempotent(t *testing.T) {
	var nilClient *influxdb.Client
	assert.NoError(t, nilClient.Close())
	assert.NoError(t, (&influxdb.Client{}).Close())
}

func TestQueryReadings_NotConnected(t *testing.T) {
	_, err := (&influxdb.Client{}).QueryReadings(context.Background(), 1, 1, time.Now(), time.Now())
	assert.ErrorIs(t, err, influxdb.ErrNotConnected)
}

func TestHealthCheck(t *testing.T) {
	client := connectOrSkip(t)
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestWriteThenQueryReadings(t *testing.T) {
	client := connectOrSkip(t)
	ctx := context.Background()

	writeErrs := make(chan error, 16)
	client.SetOnError(func(err error) {
		select {
		case writeErrs <- err:
		default:
		}
	})

	// Far in the past and keyed on a per-run meter so reruns do not collide.
	building := 900
	instance := int(time.Now().Unix() % 100000)
	base := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		client.WriteReading(building, instance, base.Add(time.Duration(i)*6*time.Second), float64(100+i))
	}
	client.Flush()
	select {
	case err := <-writeErrs:
		require.NoError(t, err)
	default:
	}

	samples, err := client.QueryReadings(ctx, building, instance, base, base.Add(24*time.Second))
	require.NoError(t, err)
	require.Len(t, samples, 4, "stop bound is exclusive")
	assert.True(t, samples[0].Time.Equal(base))
	assert.Equal(t, 103.0, samples[3].Watts)
}
