// Package experiment turns configured experiments into normalized
// train and test tables.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/nilmlab/internal/dataset"
	"github.com/nerrad567/nilmlab/internal/frame"
	"github.com/nerrad567/nilmlab/internal/infrastructure/config"
	"github.com/nerrad567/nilmlab/internal/infrastructure/logging"
)

// Split names.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

// Result is one prepared split of an experiment.
type Result struct {
	Experiment string
	Split      string
	Building   int
	Window     dataset.Window
	// SamplePeriod is in seconds.
	SamplePeriod int
	Table        *frame.Table
	Group        dataset.MeterGroup
	Labels       dataset.LabelMap
}

// Runner prepares experiments against one dataset handler.
type Runner struct {
	handler *dataset.Handler
	logger  *logging.Logger
}

// NewRunner returns a runner. A nil logger discards output.
func NewRunner(h *dataset.Handler, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{handler: h, logger: logger.With("component", "experiment")}
}

// Run prepares the train split and, when configured, the test split of exp.
//
// Each split selects exp.Appliances (plus mains with IncludeMains), reads
// them at exp.SamplePeriod and normalizes the columns keeping the
// appliance names. A split that fails aborts the run.
func (r *Runner) Run(ctx context.Context, exp config.ExperimentConfig) ([]Result, error) {
	splits := []struct {
		name string
		w    config.WindowConfig
	}{
		{SplitTrain, exp.TrainWindow},
		{SplitTest, exp.TestWindow},
	}

	var results []Result
	for _, s := range splits {
		if s.w.IsZero() {
			continue
		}
		res, err := r.runSplit(ctx, exp, s.name, s.w)
		if err != nil {
			return results, fmt.Errorf("experiment %s (%s): %w", exp.Name, s.name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runSplit(ctx context.Context, exp config.ExperimentConfig, split string, wc config.WindowConfig) (Result, error) {
	start := time.Now()
	w, err := dataset.ParseWindow(wc.Start, wc.End)
	if err != nil {
		return Result{}, err
	}

	table, group, err := r.handler.ReadSelectedAppliances(ctx, dataset.Request{
		Appliances:   exp.Appliances,
		Window:       w,
		Building:     exp.Building,
		SamplePeriod: exp.SamplePeriod,
		IncludeMains: exp.IncludeMains,
	})
	if err != nil {
		return Result{}, err
	}

	table, labels, err := r.handler.Normalize(table, group, exp.Appliances)
	if err != nil {
		return Result{}, err
	}

	r.logger.Info("split prepared",
		"experiment", exp.Name,
		"split", split,
		"window", w.String(),
		"rows", table.Rows(),
		"columns", table.Columns(),
		"duration", time.Since(start).String(),
	)

	return Result{
		Experiment:   exp.Name,
		Split:        split,
		Building:     exp.Building,
		Window:       w,
		SamplePeriod: exp.SamplePeriod,
		Table:        table,
		Group:        group,
		Labels:       labels,
	}, nil
}
