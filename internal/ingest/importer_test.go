package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/infrastructure/database"
	"github.com/nerrad567/nilmlab/internal/infrastructure/metrics"
	"github.com/nerrad567/nilmlab/migrations"
)

// writeHouse creates root/house_<n> with the given files.
func writeHouse(t *testing.T, root string, n int, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprintf("house_%d", n))
	require.NoError(t, os.MkdirAll(dir, 0o750))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
}

func openStore(t *testing.T) (*dataset.SQLiteStore, *database.DB) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "ukdale.db"),
		BusyTimeout: 5,
		Migrations:  migrations.FS,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	require.NoError(t, db.Migrate(ctx))
	return dataset.NewSQLiteStore(db.DB), db
}

func ukdaleFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeHouse(t, root, 1, map[string]string{
		"labels.dat":    "1 aggregate\n2 fridge\n3 kettle\n4 fridge\n",
		"channel_1.dat": "1362096000 300\n1362096006 310\n1362096012 305\n",
		"channel_2.dat": "1362096000 90\n1362096006 91\n",
		"channel_3.dat": "1362096006 2400\nbroken line\n",
		// channel 4 has no data file
	})
	writeHouse(t, root, 2, map[string]string{
		"labels.dat":    "1 aggregate\n2 washer_dryer\n",
		"channel_1.dat": "1362096000 150\n",
		"channel_2.dat": "1362096000 5\n",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "metadata"), 0o750))
	return root
}

func TestImportDataset_SQLite(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	m := metrics.New()
	imp := NewImporter(store, store, "sqlite", WithBatchSize(2), WithMetrics(m))

	summaries, err := imp.ImportDataset(ctx, ukdaleFixture(t), "UK DALE")
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, 1, summaries[0].Building)
	assert.Equal(t, 4, summaries[0].Meters)
	assert.Equal(t, 6, summaries[0].Readings())
	assert.Equal(t, 1, summaries[0].Channels[3].Skipped)
	assert.NotContains(t, summaries[0].Channels, 4)
	assert.Equal(t, 8.0, testutil.ToFloat64(m.ReadingsIngested.WithLabelValues("sqlite")))

	name, err := store.DatasetName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UK DALE", name)

	// The imported file is a working dataset.
	h := dataset.NewHandler(dataset.New(name, store, store, db))
	w, err := dataset.ParseWindow("3-1-2013", "3-2-2013")
	require.NoError(t, err)

	table, group, err := h.ReadSelectedAppliances(ctx, dataset.Request{
		Appliances: []string{"fridge", "kettle"}, Window: w, Building: 1, SamplePeriod: 6, IncludeMains: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kettle", "fridge", dataset.SiteMeterLabel}, group.Labels())

	out, _, err := h.Normalize(table, group, []string{"fridge", "kettle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kettle_0", "fridge_0", dataset.SiteMeterLabel}, out.Columns())
	kettle, err := out.Column("kettle_0")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2400, 0}, kettle)

	washer, err := h.SelectMeterGroup(ctx, dataset.Request{Appliances: []string{"washer dryer"}, Window: w, Building: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, washer.Len())
}

func TestImportBuilding_Window(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)
	w := dataset.Window{
		Start: time.Unix(1362096006, 0).UTC(),
		End:   time.Unix(1362096012, 0).UTC(),
	}
	imp := NewImporter(store, store, "sqlite", WithWindow(w))

	s, err := imp.ImportBuilding(ctx, filepath.Join(ukdaleFixture(t), "house_1"), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Readings(), "one reading per channel at 1362096006")
}

func TestImportDataset_Errors(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)
	imp := NewImporter(store, store, "sqlite")

	_, err := imp.ImportDataset(ctx, t.TempDir(), "UK DALE")
	assert.Error(t, err, "no house directories")

	_, err = imp.ImportDataset(ctx, filepath.Join(t.TempDir(), "missing"), "UK DALE")
	assert.Error(t, err)

	root := t.TempDir()
	writeHouse(t, root, 1, map[string]string{"channel_1.dat": "1 1\n"})
	_, err = imp.ImportDataset(ctx, root, "UK DALE")
	assert.ErrorIs(t, err, os.ErrNotExist, "labels.dat is required")
}

type failingWriter struct{ err error }

func (f failingWriter) WriteReadings(context.Context, dataset.MeterKey, []dataset.Reading) (int, error) {
	return 0, f.err
}

func TestImportBuilding_WriterError(t *testing.T) {
	store, _ := openStore(t)
	boom := errors.New("disk full")
	imp := NewImporter(store, failingWriter{boom}, "sqlite")

	_, err := imp.ImportBuilding(context.Background(), filepath.Join(ukdaleFixture(t), "house_1"), 1)
	assert.ErrorIs(t, err, boom)
}

func TestImportBuilding_Cancelled(t *testing.T) {
	store, _ := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImporter(store, store, "sqlite").ImportBuilding(ctx, filepath.Join(ukdaleFixture(t), "house_1"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
