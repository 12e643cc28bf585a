// Package config handles loading and validating nilmlab configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields and experiment windows
//   - Default value handling
//
// Sensitive values (InfluxDB token, MQTT password) should be set via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/nilmlab.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, exp := range cfg.Experiments {
//	    fmt.Println(exp.Name, exp.TrainWindow.Start)
//	}
package config
