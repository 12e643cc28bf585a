package ingest

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/nerrad567/nilmlab/internal/dataset"
)

// aggregateLabel marks the whole-house channel in labels.dat.
const aggregateLabel = "aggregate"

// Channel is one line of labels.dat.
type Channel struct {
	Number int
	Label  string
}

// ParseLabels reads labels.dat.
//
// Expected format:
//
//	1 aggregate
//	2 boiler
//	5 washer_dryer
//
// Blank lines are ignored; any other malformed line is an error.
func ParseLabels(r io.Reader) ([]Channel, error) {
	sc := bufio.NewScanner(r)
	seen := make(map[int]bool)
	var channels []Channel

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		num, label, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("labels line %d: expected \"<channel> <label>\", got %q", lineNum, line)
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("labels line %d: invalid channel %q", lineNum, num)
		}
		if seen[n] {
			return nil, fmt.Errorf("labels line %d: channel %d listed twice", lineNum, n)
		}
		seen[n] = true

		channels = append(channels, Channel{Number: n, Label: strings.TrimSpace(label)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading labels: %w", err)
	}
	return channels, nil
}

// BuildMeters turns the channels of one building into catalog meters,
// ordered by channel number.
func BuildMeters(building int, channels []Channel) []dataset.Meter {
	sorted := slices.Clone(channels)
	slices.SortFunc(sorted, func(a, b Channel) int { return cmp.Compare(a.Number, b.Number) })

	instances := make(map[string]int)
	meters := make([]dataset.Meter, 0, len(sorted))
	for _, ch := range sorted {
		m := dataset.Meter{Key: dataset.MeterKey{Building: building, Instance: ch.Number}}
		typ := applianceType(ch.Label)
		if typ == aggregateLabel {
			m.SiteMeter = true
		} else {
			instances[typ]++
			m.Appliances = []dataset.Appliance{{Type: typ, Instance: instances[typ]}}
		}
		meters = append(meters, m)
	}
	return meters
}

// applianceType normalizes a labels.dat label: "washer_dryer" -> "washer dryer".
func applianceType(label string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), "_", " "))
}
