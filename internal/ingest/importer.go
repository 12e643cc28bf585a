package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/infrastructure/logging"
	"github.com/nerrad567/nilmlab/internal/infrastructure/metrics"
)

const defaultBatchSize = 5000

// houseDir matches UK-DALE house directories ("house_1").
var houseDir = regexp.MustCompile(`^house_(\d+)$`)

// CatalogWriter stores the meter catalog.
type CatalogWriter interface {
	SetDatasetName(ctx context.Context, name string) error
	SaveBuilding(ctx context.Context, building int, name string, meters []dataset.Meter) error
}

// ReadingWriter stores readings of one meter.
type ReadingWriter interface {
	WriteReadings(ctx context.Context, key dataset.MeterKey, readings []dataset.Reading) (int, error)
}

// Importer loads house directories into a catalog and a reading store.
type Importer struct {
	catalog   CatalogWriter
	readings  ReadingWriter
	backend   string
	window    *dataset.Window
	batchSize int
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithWindow keeps only readings inside w.
func WithWindow(w dataset.Window) Option {
	return func(i *Importer) { i.window = &w }
}

// WithBatchSize sets how many readings are written per batch.
func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithMetrics counts ingested readings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// NewImporter returns an importer writing the catalog to catalog and
// readings to readings. backend labels the readings store in logs and
// metrics ("sqlite" or "influxdb").
func NewImporter(catalog CatalogWriter, readings ReadingWriter, backend string, opts ...Option) *Importer {
	i := &Importer{
		catalog:   catalog,
		readings:  readings,
		backend:   backend,
		batchSize: defaultBatchSize,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With("component", "ingest", "backend", backend)
	return i
}

// BuildingSummary reports one imported house.
type BuildingSummary struct {
	Building int
	Meters   int
	Channels map[int]ChannelStats // by channel number; absent files are not listed
}

// Readings returns the total readings written for the building.
func (s BuildingSummary) Readings() int {
	n := 0
	for _, c := range s.Channels {
		n += c.Readings
	}
	return n
}

// ImportDataset records the dataset name and imports every house_<n>
// directory under root, in building order.
func (i *Importer) ImportDataset(ctx context.Context, root, name string) ([]BuildingSummary, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}

	var buildings []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if m := houseDir.FindStringSubmatch(e.Name()); m != nil {
			n, _ := strconv.Atoi(m[1]) //nolint:errcheck // regexp guarantees digits
			buildings = append(buildings, n)
		}
	}
	if len(buildings) == 0 {
		return nil, fmt.Errorf("no house_<n> directories in %s", root)
	}
	sort.Ints(buildings)

	if err := i.catalog.SetDatasetName(ctx, name); err != nil {
		return nil, err
	}

	summaries := make([]BuildingSummary, 0, len(buildings))
	for _, b := range buildings {
		s, err := i.ImportBuilding(ctx, filepath.Join(root, fmt.Sprintf("house_%d", b)), b)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ImportBuilding imports one house directory as building.
//
// The catalog is replaced from labels.dat first. Channels whose data file
// is missing are logged and skipped.
func (i *Importer) ImportBuilding(ctx context.Context, dir string, building int) (BuildingSummary, error) {
	start := time.Now()
	summary := BuildingSummary{Building: building, Channels: map[int]ChannelStats{}}

	f, err := os.Open(filepath.Join(dir, "labels.dat"))
	if err != nil {
		return summary, fmt.Errorf("opening labels of building %d: %w", building, err)
	}
	channels, err := ParseLabels(f)
	f.Close() //nolint:errcheck // read-only
	if err != nil {
		return summary, fmt.Errorf("building %d: %w", building, err)
	}

	meters := BuildMeters(building, channels)
	if err := i.catalog.SaveBuilding(ctx, building, filepath.Base(dir), meters); err != nil {
		return summary, err
	}
	summary.Meters = len(meters)

	for _, m := range meters {
		stats, err := i.importChannel(ctx, dir, m.Key)
		if errors.Is(err, fs.ErrNotExist) {
			i.logger.Warn("channel file missing", "building", building, "channel", m.Key.Instance)
			continue
		}
		if err != nil {
			return summary, err
		}
		summary.Channels[m.Key.Instance] = stats
	}

	i.logger.Info("building imported",
		"building", building,
		"meters", summary.Meters,
		"readings", summary.Readings(),
		"duration", time.Since(start).String(),
	)
	return summary, nil
}

func (i *Importer) importChannel(ctx context.Context, dir string, key dataset.MeterKey) (ChannelStats, error) {
	f, err := os.Open(filepath.Join(dir, fmt.Sprintf("channel_%d.dat", key.Instance)))
	if err != nil {
		return ChannelStats{}, err
	}
	defer f.Close()

	stats, err := ReadChannel(f, i.window, i.batchSize, func(batch []dataset.Reading) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := i.readings.WriteReadings(ctx, key, batch)
		i.metrics.AddIngested(i.backend, n)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("importing channel %s: %w", key, err)
	}

	if stats.Skipped > 0 {
		i.logger.Debug("channel lines skipped", "meter", key.String(), "skipped", stats.Skipped)
	}
	return stats, nil
}
