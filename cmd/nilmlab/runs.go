package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/nerrad567/nilmlab/internal/infrastructure/database"
	"github.com/nerrad567/nilmlab/internal/runlog"
	"github.com/nerrad567/nilmlab/migrations"
)

// recordRuns appends entries to the run log through a short-lived
// read-write handle. Failures are logged; the work itself already succeeded.
func (a *app) recordRuns(ctx context.Context, entries []runlog.Entry) {
	if len(entries) == 0 {
		return
	}
	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Dataset.Path,
		WALMode:     a.cfg.Dataset.WALMode,
		BusyTimeout: a.cfg.Dataset.BusyTimeout,
		Migrations:  migrations.FS,
	})
	if err != nil {
		a.log.Warn("run log not written", "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // short-lived handle

	a.writeRuns(ctx, runlog.NewSQLiteRepository(db.DB), entries)
}

func (a *app) writeRuns(ctx context.Context, repo runlog.Repository, entries []runlog.Entry) {
	for i := range entries {
		if err := repo.Create(ctx, &entries[i]); err != nil {
			a.log.Warn("run log entry not written", "subject", entries[i].Subject, "error", err)
		}
	}
}

// runs lists the run log, newest first.
func (a *app) runs(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("runs", pflag.ContinueOnError)
	action := flags.String("action", "", "only ingest or prepare entries")
	runID := flags.String("run", "", "only entries of this run ID")
	limit := flags.IntP("limit", "n", 20, "entries to show")
	if err := flags.Parse(args); err != nil {
		return err
	}

	db, err := database.Open(ctx, database.Config{
		Path:        a.cfg.Dataset.Path,
		BusyTimeout: a.cfg.Dataset.BusyTimeout,
		ReadOnly:    true,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only

	res, err := runlog.NewSQLiteRepository(db.DB).List(ctx, runlog.Filter{Action: *action, RunID: *runID, Limit: *limit})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tACTION\tSUBJECT\tDETAILS")
	for _, e := range res.Entries {
		details, _ := json.Marshal(e.Details) //nolint:errcheck // decoded from JSON
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.RunID, e.Action, e.Subject, details)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d entries\n", len(res.Entries), res.Total)
	return nil
}
