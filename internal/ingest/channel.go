package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/nilmlab/internal/dataset"
)

// maxLineBytes bounds a single channel file line.
const maxLineBytes = 1 << 16

// ChannelStats summarizes one parsed channel file.
type ChannelStats struct {
	Lines    int
	Readings int
	Skipped  int // malformed or out-of-window lines
}

// ReadChannel streams a channel_<n>.dat file, calling fn with batches of at
// most batchSize readings.
//
// Expected format (Unix seconds, fractional seconds allowed):
//
//	1352500095 599
//	1352500101 582
//
// Malformed lines are skipped and counted. When w is non-nil only readings
// inside it are kept. fn must not retain the batch; errors from fn stop
// the read.
func ReadChannel(r io.Reader, w *dataset.Window, batchSize int, fn func([]dataset.Reading) error) (ChannelStats, error) {
	if batchSize < 1 {
		batchSize = 1
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var stats ChannelStats
	batch := make([]dataset.Reading, 0, batchSize)
	for sc.Scan() {
		stats.Lines++
		reading, ok := parseChannelLine(sc.Text())
		if !ok || (w != nil && !w.Contains(reading.Time)) {
			stats.Skipped++
			continue
		}

		batch = append(batch, reading)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return stats, err
			}
			stats.Readings += len(batch)
			batch = batch[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading channel: %w", err)
	}
	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			return stats, err
		}
		stats.Readings += len(batch)
	}
	return stats, nil
}

func parseChannelLine(line string) (dataset.Reading, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return dataset.Reading{}, false
	}

	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return dataset.Reading{}, false
	}
	watts, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsNaN(watts) || math.IsInf(watts, 0) {
		return dataset.Reading{}, false
	}

	whole, frac := math.Modf(secs)
	ts := time.Unix(int64(whole), int64(frac*1e9)).UTC().Truncate(time.Millisecond)
	return dataset.Reading{Time: ts, Watts: watts}, true
}
