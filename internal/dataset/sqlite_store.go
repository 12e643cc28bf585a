package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// metaName is the dataset_meta key holding the dataset's display name.
const metaName = "name"

// SQLiteStore implements Catalog and ReadingSource on the nilmlab schema.
//
// It also carries the write side used by ingest. Readings are stored with
// millisecond timestamps.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open, migrated database.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteStore: Store ready for use
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DatasetName returns the recorded dataset name, or "" when none is set.
func (s *SQLiteStore) DatasetName(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM dataset_meta WHERE key = ?", metaName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying dataset name: %w", err)
	}
	return name, nil
}

// SetDatasetName records the dataset's display name.
func (s *SQLiteStore) SetDatasetName(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO dataset_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		metaName, name,
	)
	if err != nil {
		return fmt.Errorf("saving dataset name: %w", err)
	}
	return nil
}

// Buildings returns the building ids in ascending order.
func (s *SQLiteStore) Buildings(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM buildings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying buildings: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning building: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buildings: %w", err)
	}
	return ids, nil
}

// Meters returns the meters of building ordered by instance, each with its
// appliances in declaration order.
//
// Returns ErrBuildingNotFound when the building is not in the catalog.
func (s *SQLiteStore) Meters(ctx context.Context, building int) ([]Meter, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM buildings WHERE id = ?", building).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("querying building: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBuildingNotFound, building)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT m.instance, m.site_meter, a.type, a.instance
		 FROM meters m
		 LEFT JOIN meter_appliances a
		   ON a.building = m.building AND a.meter_instance = m.instance
		 WHERE m.building = ?
		 ORDER BY m.instance, a.position`,
		building,
	)
	if err != nil {
		return nil, fmt.Errorf("querying meters: %w", err)
	}
	defer rows.Close()

	var meters []Meter
	for rows.Next() {
		var (
			instance  int
			siteMeter bool
			appType   sql.NullString
			appInst   sql.NullInt64
		)
		if err := rows.Scan(&instance, &siteMeter, &appType, &appInst); err != nil {
			return nil, fmt.Errorf("scanning meter: %w", err)
		}

		if n := len(meters); n == 0 || meters[n-1].Key.Instance != instance {
			meters = append(meters, Meter{
				Key:       MeterKey{Building: building, Instance: instance},
				SiteMeter: siteMeter,
			})
		}
		if appType.Valid {
			m := &meters[len(meters)-1]
			m.Appliances = append(m.Appliances, Appliance{Type: appType.String, Instance: int(appInst.Int64)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meters: %w", err)
	}
	return meters, nil
}

// Readings returns the samples of key in [w.Start, w.End), oldest first.
func (s *SQLiteStore) Readings(ctx context.Context, key MeterKey, w Window) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts_ms, watts FROM readings
		 WHERE building = ? AND meter_instance = ? AND ts_ms >= ? AND ts_ms < ?
		 ORDER BY ts_ms`,
		key.Building, key.Instance, w.Start.UnixMilli(), w.End.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var ms int64
		var r Reading
		if err := rows.Scan(&ms, &r.Watts); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		r.Time = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return out, nil
}

// SaveBuilding replaces the catalog entry of building with meters.
// Readings of meters that no longer exist are removed with them.
func (s *SQLiteStore) SaveBuilding(ctx context.Context, building int, name string, meters []Meter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO buildings (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name",
		building, name,
	); err != nil {
		return fmt.Errorf("saving building %d: %w", building, err)
	}

	keep := make(map[int]bool, len(meters))
	for _, m := range meters {
		if m.Key.Building != building {
			return fmt.Errorf("meter %s does not belong to building %d", m.Key, building)
		}
		keep[m.Key.Instance] = true

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meters (building, instance, site_meter) VALUES (?, ?, ?)
			 ON CONFLICT(building, instance) DO UPDATE SET site_meter = excluded.site_meter`,
			building, m.Key.Instance, m.SiteMeter,
		); err != nil {
			return fmt.Errorf("saving meter %s: %w", m.Key, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM meter_appliances WHERE building = ? AND meter_instance = ?",
			building, m.Key.Instance,
		); err != nil {
			return fmt.Errorf("clearing appliances of %s: %w", m.Key, err)
		}
		for pos, a := range m.Appliances {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO meter_appliances (building, meter_instance, position, type, instance)
				 VALUES (?, ?, ?, ?, ?)`,
				building, m.Key.Instance, pos, a.Type, a.Instance,
			); err != nil {
				return fmt.Errorf("saving appliance %s of %s: %w", a.Type, m.Key, err)
			}
		}
	}

	existing, err := tx.QueryContext(ctx, "SELECT instance FROM meters WHERE building = ?", building)
	if err != nil {
		return fmt.Errorf("listing meters of building %d: %w", building, err)
	}
	var stale []int
	for existing.Next() {
		var inst int
		if err := existing.Scan(&inst); err != nil {
			existing.Close()
			return fmt.Errorf("scanning meter: %w", err)
		}
		if !keep[inst] {
			stale = append(stale, inst)
		}
	}
	existing.Close()
	if err := existing.Err(); err != nil {
		return fmt.Errorf("iterating meters: %w", err)
	}
	for _, inst := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM meters WHERE building = ? AND instance = ?", building, inst); err != nil {
			return fmt.Errorf("removing meter %d of building %d: %w", inst, building, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing building %d: %w", building, err)
	}
	return nil
}

// WriteReadings stores samples for key, replacing any at the same instant.
// It returns the number of rows written.
func (s *SQLiteStore) WriteReadings(ctx context.Context, key MeterKey, readings []Reading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (building, meter_instance, ts_ms, watts) VALUES (?, ?, ?, ?)
		 ON CONFLICT(building, meter_instance, ts_ms) DO UPDATE SET watts = excluded.watts`,
	)
	if err != nil {
		return 0, fmt.Errorf("preparing reading insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, key.Building, key.Instance, r.Time.UnixMilli(), r.Watts); err != nil {
			return 0, fmt.Errorf("writing reading of %s at %s: %w", key, r.Time.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing readings of %s: %w", key, err)
	}
	return len(readings), nil
}
