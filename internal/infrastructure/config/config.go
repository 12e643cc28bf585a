package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WindowLayout is the date layout used for experiment windows ("M-D-YYYY").
const WindowLayout = "1-2-2006"

// Readings backends accepted by dataset.readings.
const (
	ReadingsSQLite   = "sqlite"
	ReadingsInfluxDB = "influxdb"
)

// Probe modes accepted by dataset.probe.
const (
	ProbePerAppliance = "per_appliance"
	ProbeWholeList    = "whole_list"
)

// Config is the root configuration structure for nilmlab.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Dataset     DatasetConfig      `yaml:"dataset"`
	InfluxDB    InfluxDBConfig     `yaml:"influxdb"`
	MQTT        MQTTConfig         `yaml:"mqtt"`
	Logging     LoggingConfig      `yaml:"logging"`
	Metrics     MetricsConfig      `yaml:"metrics"`
	Export      ExportConfig       `yaml:"export"`
	Experiments []ExperimentConfig `yaml:"experiments"`
}

// DatasetConfig describes the metering dataset store.
type DatasetConfig struct {
	// Name is the human-readable dataset name (e.g. "UK DALE").
	Name string `yaml:"name"`

	// Path is the SQLite file holding the meter catalog (and readings when
	// Readings is "sqlite").
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// Readings selects where channel samples are read from: "sqlite" or "influxdb".
	Readings string `yaml:"readings"`

	// Probe selects how appliances are classified as single- or multi-meter:
	// "per_appliance" or "whole_list".
	Probe string `yaml:"probe"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	Measurement   string `yaml:"measurement"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Textfile, when set, is where the registry is written after a run
	// (node_exporter textfile collector format).
	Textfile string `yaml:"textfile"`
}

// ExportConfig controls the artefacts written by the prepare command.
type ExportConfig struct {
	Dir  string `yaml:"dir"`
	XLSX bool   `yaml:"xlsx"`
	PDF  bool   `yaml:"pdf"`
}

// ExperimentConfig describes one dataset preparation run.
type ExperimentConfig struct {
	Name         string       `yaml:"name"`
	Building     int          `yaml:"building"`
	SamplePeriod int          `yaml:"sample_period"`
	IncludeMains bool         `yaml:"include_mains"`
	Appliances   []string     `yaml:"appliances"`
	TrainWindow  WindowConfig `yaml:"train_window"`
	TestWindow   WindowConfig `yaml:"test_window"`
}

// WindowConfig is a date window in WindowLayout format. End is exclusive.
type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// IsZero reports whether neither bound is set.
func (w WindowConfig) IsZero() bool {
	return w.Start == "" && w.End == ""
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: NILMLAB_SECTION_KEY
// For example: NILMLAB_DATASET_PATH, NILMLAB_INFLUXDB_TOKEN
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading a file.
// Environment overrides are applied.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
//
// The default experiment mirrors the UK-DALE building 1 set-up the lab
// started from: spring 2013 for training, second half of 2014 for testing.
func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Name:        "UK DALE",
			Path:        "./data/ukdale.db",
			WALMode:     true,
			BusyTimeout: 5,
			Readings:    ReadingsSQLite,
			Probe:       ProbePerAppliance,
		},
		InfluxDB: InfluxDBConfig{
			Measurement:   "meter_power",
			BatchSize:     5000,
			FlushInterval: 1,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "nilmlab",
			},
			QoS:         1,
			TopicPrefix: "nilmlab",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Export: ExportConfig{
			Dir:  "./out",
			XLSX: true,
		},
		Experiments: []ExperimentConfig{
			{
				Name:         "ukdale_building_1",
				Building:     1,
				SamplePeriod: 6,
				IncludeMains: true,
				Appliances: []string{
					"oven", "microwave", "dish washer", "fridge freezer", "kettle", "washer dryer",
					"toaster", "boiler", "television", "hair dryer", "vacuum cleaner", "light",
				},
				TrainWindow: WindowConfig{Start: "3-1-2013", End: "5-30-2013"},
				TestWindow:  WindowConfig{Start: "6-1-2014", End: "12-30-2014"},
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: NILMLAB_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Dataset
	if v := os.Getenv("NILMLAB_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("NILMLAB_DATASET_READINGS"); v != "" {
		cfg.Dataset.Readings = v
	}

	// InfluxDB
	if v := os.Getenv("NILMLAB_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("NILMLAB_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// MQTT
	if v := os.Getenv("NILMLAB_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("NILMLAB_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("NILMLAB_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Logging
	if v := os.Getenv("NILMLAB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
// All problems are collected and reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Dataset.Path == "" {
		errs = append(errs, "dataset.path is required")
	}
	switch c.Dataset.Readings {
	case ReadingsSQLite:
	case ReadingsInfluxDB:
		if !c.InfluxDB.Enabled {
			errs = append(errs, "dataset.readings is influxdb but influxdb.enabled is false")
		}
	default:
		errs = append(errs, fmt.Sprintf("dataset.readings must be %q or %q", ReadingsSQLite, ReadingsInfluxDB))
	}
	switch c.Dataset.Probe {
	case ProbePerAppliance, ProbeWholeList:
	default:
		errs = append(errs, fmt.Sprintf("dataset.probe must be %q or %q", ProbePerAppliance, ProbeWholeList))
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	seen := make(map[string]bool, len(c.Experiments))
	for i, exp := range c.Experiments {
		prefix := fmt.Sprintf("experiments[%d]", i)
		if exp.Name == "" {
			errs = append(errs, prefix+".name is required")
		} else if seen[exp.Name] {
			errs = append(errs, fmt.Sprintf("%s.name %q is duplicated", prefix, exp.Name))
		}
		seen[exp.Name] = true

		if exp.Building < 1 {
			errs = append(errs, prefix+".building must be >= 1")
		}
		if exp.SamplePeriod < 1 {
			errs = append(errs, prefix+".sample_period must be >= 1 second")
		}
		if len(exp.Appliances) == 0 {
			errs = append(errs, prefix+".appliances must not be empty")
		}
		if exp.TrainWindow.IsZero() {
			errs = append(errs, prefix+".train_window is required")
		} else if err := exp.TrainWindow.validate(); err != nil {
			errs = append(errs, fmt.Sprintf("%s.train_window: %v", prefix, err))
		}
		if !exp.TestWindow.IsZero() {
			if err := exp.TestWindow.validate(); err != nil {
				errs = append(errs, fmt.Sprintf("%s.test_window: %v", prefix, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate checks both bounds parse and that end follows start.
func (w WindowConfig) validate() error {
	start, err := time.Parse(WindowLayout, w.Start)
	if err != nil {
		return fmt.Errorf("start %q is not M-D-YYYY", w.Start)
	}
	end, err := time.Parse(WindowLayout, w.End)
	if err != nil {
		return fmt.Errorf("end %q is not M-D-YYYY", w.End)
	}
	if !end.After(start) {
		return fmt.Errorf("end %s must be after start %s", w.End, w.Start)
	}
	return nil
}

// Experiment returns the experiment with the given name.
func (c *Config) Experiment(name string) (ExperimentConfig, bool) {
	for _, exp := range c.Experiments {
		if exp.Name == name {
			return exp, true
		}
	}
	return ExperimentConfig{}, false
}
