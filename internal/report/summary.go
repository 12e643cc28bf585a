// Package report renders prepared experiment splits as run summaries,
// spreadsheets and PDFs, and publishes summaries over MQTT.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/experiment"
)

const secondsPerHour = 3600

// Column summarizes one normalized column.
type Column struct {
	Label string `json:"label"`
	Meter string `json:"meter"`
	// EnergyWh is the column's energy over the split, from the bucket means
	// times the sample period.
	EnergyWh float64 `json:"energy_wh"`
}

// Summary describes one prepared split.
type Summary struct {
	RunID        uuid.UUID `json:"run_id"`
	Dataset      string    `json:"dataset"`
	Experiment   string    `json:"experiment"`
	Split        string    `json:"split"`
	Building     int       `json:"building"`
	Window       string    `json:"window"`
	SamplePeriod int       `json:"sample_period"`
	Rows         int       `json:"rows"`
	First        time.Time `json:"first,omitzero"`
	Last         time.Time `json:"last,omitzero"`
	Columns      []Column  `json:"columns"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// NewSummary summarizes res. Runs that prepare several splits share runID.
func NewSummary(runID uuid.UUID, datasetName string, res experiment.Result) Summary {
	s := Summary{
		RunID:        runID,
		Dataset:      datasetName,
		Experiment:   res.Experiment,
		Split:        res.Split,
		Building:     res.Building,
		Window:       res.Window.String(),
		SamplePeriod: res.SamplePeriod,
		GeneratedAt:  time.Now().UTC(),
	}
	if res.Table == nil {
		return s
	}

	s.Rows = res.Table.Rows()
	if idx := res.Table.Index(); len(idx) > 0 {
		s.First, s.Last = idx[0], idx[len(idx)-1]
	}
	sums := res.Table.Sums()
	for j, label := range res.Table.Columns() {
		c := Column{
			Label:    label,
			EnergyWh: sums[j] * float64(res.SamplePeriod) / secondsPerHour,
		}
		if key, ok := res.Labels[label]; ok {
			c.Meter = key.String()
		}
		s.Columns = append(s.Columns, c)
	}
	return s
}

// ApplianceEnergyWh sums the energy of every column except an unrequested
// site meter.
func (s Summary) ApplianceEnergyWh() float64 {
	var total float64
	for _, c := range s.Columns {
		if c.Label != dataset.SiteMeterLabel {
			total += c.EnergyWh
		}
	}
	return total
}
