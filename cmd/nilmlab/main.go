// nilmlab prepares appliance-level training data from metered households.
//
// It imports UK-DALE style house directories into a SQLite meter catalog
// (readings in SQLite or InfluxDB), selects meter groups for configured
// experiments and writes normalized train/test tables.
//
// Usage:
//
//	nilmlab [--config FILE] ingest --root DIR [--building N] [--start M-D-YYYY --end M-D-YYYY]
//	nilmlab [--config FILE] prepare [--experiment NAME] [--probe MODE] [--no-export]
//	nilmlab [--config FILE] meters --building N [--appliances a,b] [--mains]
//	nilmlab [--config FILE] runs [--action ingest|prepare] [--run ID]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nerrad567/nilmlab/internal/infrastructure/config"
	"github.com/nerrad567/nilmlab/internal/infrastructure/logging"
	"github.com/nerrad567/nilmlab/internal/infrastructure/metrics"
	"github.com/nerrad567/nilmlab/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/nilmlab.yaml"

var errUsage = errors.New("usage: nilmlab [--config FILE] <ingest|prepare|meters|runs> [flags]")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Metrics
	out     io.Writer
}

// run parses the global flags, loads the configuration and dispatches to a
// subcommand. It is separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: command line without the program name
//   - out: where command results are printed
//
// Returns:
//   - error: nil on success, or error describing failure
func run(ctx context.Context, args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("nilmlab", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	configPath := flags.StringP("config", "c", "", "configuration file (default $NILMLAB_CONFIG or "+defaultConfigPath+")")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(out, "nilmlab %s (%s, %s)\n", version, commit, date)
		return nil
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return errUsage
	}

	path := getConfigPath(*configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     logging.New(cfg.Logging, version),
		metrics: metrics.New(),
		out:     out,
	}
	a.log.Debug("configuration loaded", "path", path, "command", rest[0])

	switch rest[0] {
	case "ingest":
		err = a.ingest(ctx, rest[1:])
	case "prepare":
		err = a.prepare(ctx, rest[1:])
	case "meters":
		err = a.meters(ctx, rest[1:])
	case "runs":
		err = a.runs(ctx, rest[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}

	if writeErr := a.metrics.WriteTextfile(cfg.Metrics.Textfile); writeErr != nil {
		a.log.Warn("metrics not written", "error", writeErr)
	}
	return err
}

// getConfigPath returns the configuration file path: the flag, then
// NILMLAB_CONFIG, then the default.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("NILMLAB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectMQTT returns a connected client, or nil when MQTT is disabled or
// unreachable. Publishing results is best effort.
func (a *app) connectMQTT() *mqtt.Client {
	client, err := mqtt.Connect(a.cfg.MQTT)
	if errors.Is(err, mqtt.ErrDisabled) {
		return nil
	}
	if err != nil {
		a.log.Warn("MQTT unavailable, results will not be published", "error", err)
		return nil
	}
	client.SetLogger(a.log)
	a.log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
		"client_id", a.cfg.MQTT.Broker.ClientID,
	)
	return client
}

func (a *app) closeMQTT(client *mqtt.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		a.log.Error("error closing MQTT", "error", err)
	}
}
