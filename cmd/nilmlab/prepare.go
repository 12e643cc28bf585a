package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/experiment"
	"github.com/nerrad567/nilmlab/internal/infrastructure/config"
	"github.com/nerrad567/nilmlab/internal/infrastructure/database"
	"github.com/nerrad567/nilmlab/internal/infrastructure/influxdb"
	"github.com/nerrad567/nilmlab/internal/report"
	"github.com/nerrad567/nilmlab/internal/runlog"
	"github.com/nerrad567/nilmlab/migrations"
)

var errNotMigrated = errors.New("dataset schema is not up to date; run nilmlab ingest first")

// openDataset opens the configured dataset read-only. The returned
// dataset owns every store it opened.
func (a *app) openDataset(ctx context.Context) (*dataset.Dataset, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Dataset.Path,
		BusyTimeout: a.cfg.Dataset.BusyTimeout,
		ReadOnly:    true,
		Migrations:  migrations.FS,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		db.Close() //nolint:errcheck // error path
		return nil, err
	}
	if len(pending) > 0 {
		db.Close() //nolint:errcheck // error path
		return nil, fmt.Errorf("%w (%d pending migrations)", errNotMigrated, len(pending))
	}

	store := dataset.NewSQLiteStore(db.DB)
	name, err := store.DatasetName(ctx)
	if err != nil {
		db.Close() //nolint:errcheck // error path
		return nil, err
	}
	if name == "" {
		name = a.cfg.Dataset.Name
	}

	closers := []io.Closer{db}
	var readings dataset.ReadingSource = store
	if a.cfg.Dataset.Readings == config.ReadingsInfluxDB {
		client, err := influxdb.Connect(ctx, a.cfg.InfluxDB)
		if err != nil {
			db.Close() //nolint:errcheck // error path
			return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		readings = dataset.NewInfluxReadings(client)
		closers = append(closers, client)
	}

	a.log.Info("dataset opened", "name", name, "path", db.Path(), "readings", a.cfg.Dataset.Readings)
	return dataset.New(name, store, readings, closers...), nil
}

func (a *app) handler(ds *dataset.Dataset, probe string) (*dataset.Handler, error) {
	mode, err := dataset.ParseProbeMode(probe)
	if err != nil {
		return nil, err
	}
	return dataset.NewHandler(ds,
		dataset.WithProbeMode(mode),
		dataset.WithLogger(a.log),
		dataset.WithMetrics(a.metrics),
	), nil
}

// prepare runs the configured experiments and exports the normalized splits.
func (a *app) prepare(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("prepare", pflag.ContinueOnError)
	name := flags.StringP("experiment", "e", "", "run only this experiment")
	probe := flags.String("probe", a.cfg.Dataset.Probe, "probe mode: per_appliance or whole_list")
	noExport := flags.Bool("no-export", false, "do not write xlsx/pdf files")
	if err := flags.Parse(args); err != nil {
		return err
	}

	experiments := a.cfg.Experiments
	if *name != "" {
		exp, ok := a.cfg.Experiment(*name)
		if !ok {
			return fmt.Errorf("prepare: no experiment named %q", *name)
		}
		experiments = []config.ExperimentConfig{exp}
	}
	if len(experiments) == 0 {
		return fmt.Errorf("prepare: no experiments configured")
	}

	ds, err := a.openDataset(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ds.Close(); closeErr != nil {
			a.log.Error("error closing dataset", "error", closeErr)
		}
	}()

	h, err := a.handler(ds, *probe)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	runner := experiment.NewRunner(h, a.log)

	mq := a.connectMQTT()
	defer a.closeMQTT(mq)
	var publisher *report.Publisher
	if mq != nil {
		publisher = report.NewPublisher(mq)
	}

	formats := report.Formats{XLSX: a.cfg.Export.XLSX, PDF: a.cfg.Export.PDF}
	if *noExport {
		formats = report.Formats{}
	}

	runID := uuid.New()
	a.log.Info("preparing experiments", "run_id", runID.String(), "experiments", len(experiments), "probe", h.ProbeMode().String())

	var entries []runlog.Entry
	defer func() { a.recordRuns(ctx, entries) }()

	for _, exp := range experiments {
		results, err := runner.Run(ctx, exp)
		if err != nil {
			return err
		}
		for _, res := range results {
			s := report.NewSummary(runID, ds.Name(), res)
			fmt.Fprintf(a.out, "%s/%s: %d rows, columns %v\n", res.Experiment, res.Split, s.Rows, res.Table.Columns())

			paths, err := report.WriteFiles(a.cfg.Export.Dir, s, res, formats)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(a.out, "  wrote %s\n", p)
			}
			entries = append(entries, runlog.Entry{
				RunID:   runID.String(),
				Action:  runlog.ActionPrepare,
				Subject: res.Experiment + "/" + res.Split,
				Details: map[string]any{
					"probe":   h.ProbeMode().String(),
					"window":  s.Window,
					"rows":    s.Rows,
					"columns": res.Table.Columns(),
					"files":   paths,
				},
			})

			if publisher != nil {
				if err := publisher.Publish(s); err != nil {
					a.log.Warn("summary not published", "error", err)
				}
			}
		}
	}
	return nil
}
