package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/infrastructure/config"
	"github.com/nerrad567/nilmlab/internal/infrastructure/database"
	"github.com/nerrad567/nilmlab/internal/infrastructure/influxdb"
	"github.com/nerrad567/nilmlab/internal/ingest"
	"github.com/nerrad567/nilmlab/internal/runlog"
	"github.com/nerrad567/nilmlab/migrations"
)

// ingest imports house directories into the configured dataset.
func (a *app) ingest(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("ingest", pflag.ContinueOnError)
	root := flags.StringP("root", "r", "", "directory holding house_<n> directories")
	building := flags.IntP("building", "b", 0, "import only house_<n> (0 imports every house)")
	start := flags.String("start", "", "keep readings from this date (M-D-YYYY)")
	end := flags.String("end", "", "keep readings before this date (M-D-YYYY)")
	batchSize := flags.Int("batch-size", 0, "readings per write batch (0 uses influxdb.batch_size or 5000)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *root == "" {
		return fmt.Errorf("ingest: --root is required")
	}

	opts := []ingest.Option{ingest.WithLogger(a.log), ingest.WithMetrics(a.metrics)}
	if *start != "" || *end != "" {
		w, err := dataset.ParseWindow(*start, *end)
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		opts = append(opts, ingest.WithWindow(w))
	}

	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Dataset.Path,
		WALMode:     a.cfg.Dataset.WALMode,
		BusyTimeout: a.cfg.Dataset.BusyTimeout,
		Migrations:  migrations.FS,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	store := dataset.NewSQLiteStore(db.DB)

	var writer ingest.ReadingWriter = store
	if a.cfg.Dataset.Readings == config.ReadingsInfluxDB {
		client, err := influxdb.Connect(ctx, a.cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				a.log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		client.SetOnError(func(err error) {
			a.log.Error("InfluxDB write failed", "error", err)
		})
		iw := ingest.NewInfluxWriter(client)
		defer iw.Flush()
		writer = iw
		if *batchSize == 0 {
			*batchSize = a.cfg.InfluxDB.BatchSize
		}
	}
	opts = append(opts, ingest.WithBatchSize(*batchSize))

	importer := ingest.NewImporter(store, writer, a.cfg.Dataset.Readings, opts...)

	var summaries []ingest.BuildingSummary
	if *building > 0 {
		if err := store.SetDatasetName(ctx, a.cfg.Dataset.Name); err != nil {
			return err
		}
		s, err := importer.ImportBuilding(ctx, filepath.Join(*root, fmt.Sprintf("house_%d", *building)), *building)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	} else {
		summaries, err = importer.ImportDataset(ctx, *root, a.cfg.Dataset.Name)
		if err != nil {
			return err
		}
	}

	runID := uuid.NewString()
	entries := make([]runlog.Entry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, runlog.Entry{
			RunID:   runID,
			Action:  runlog.ActionIngest,
			Subject: fmt.Sprintf("building-%d", s.Building),
			Details: map[string]any{
				"root":     *root,
				"backend":  a.cfg.Dataset.Readings,
				"meters":   s.Meters,
				"readings": s.Readings(),
			},
		})
	}
	a.writeRuns(ctx, runlog.NewSQLiteRepository(db.DB), entries)

	mq := a.connectMQTT()
	defer a.closeMQTT(mq)
	for _, s := range summaries {
		fmt.Fprintf(a.out, "building %d: %d meters, %d readings\n", s.Building, s.Meters, s.Readings())
		if mq == nil {
			continue
		}
		if err := mq.PublishJSON(mq.Topics().Ingest(s.Building), s); err != nil {
			a.log.Warn("ingest summary not published", "building", s.Building, "error", err)
		}
	}
	return nil
}
