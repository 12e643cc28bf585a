// Package database provides SQLite connectivity for the nilmlab dataset store.
//
// This package manages:
//   - Opening dataset files read-write (ingest) or read-only (preparation)
//   - WAL mode so preparation runs can read while an ingest writes
//   - Schema migrations loaded from an fs.FS, one transaction each
//
// All queries use parameterised statements.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:       cfg.Dataset.Path,
//	    WALMode:    cfg.Dataset.WALMode,
//	    Migrations: migrations.FS,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional .down.sql partner.
package database
