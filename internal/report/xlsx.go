package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/nilmlab/internal/experiment"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SheetSummary = "summary"
	SheetData    = "data"
	SheetLabels  = "labels"
)

// WriteXLSX writes a workbook with the run summary, the normalized table
// (one row per sample instant, first column the UTC timestamp) and the
// label-to-meter map.
func WriteXLSX(w io.Writer, s Summary, res experiment.Result) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("report: naming sheet: %w", err)
	}
	for _, name := range []string{SheetData, SheetLabels} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("report: adding sheet %s: %w", name, err)
		}
	}

	rows := [][]any{
		{"Run", s.RunID.String()},
		{"Dataset", s.Dataset},
		{"Experiment", s.Experiment},
		{"Split", s.Split},
		{"Building", s.Building},
		{"Window", s.Window},
		{"Sample period (s)", s.SamplePeriod},
		{"Rows", s.Rows},
		{"Generated", s.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Column", "Meter", "Energy (Wh)"},
	}
	for _, c := range s.Columns {
		rows = append(rows, []any{c.Label, c.Meter, c.EnergyWh})
	}
	if err := setRows(f, SheetSummary, rows); err != nil {
		return err
	}

	if res.Table != nil {
		header := []any{"timestamp"}
		for _, c := range res.Table.Columns() {
			header = append(header, c)
		}
		data := [][]any{header}
		for i, ts := range res.Table.Index() {
			row := make([]any, 0, res.Table.Cols()+1)
			row = append(row, ts.UTC().Format(time.RFC3339))
			for j := 0; j < res.Table.Cols(); j++ {
				row = append(row, res.Table.At(i, j))
			}
			data = append(data, row)
		}
		if err := setRows(f, SheetData, data); err != nil {
			return err
		}
	}

	labels := make([]string, 0, len(res.Labels))
	for l := range res.Labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	mapping := [][]any{{"label", "meter"}}
	for _, l := range labels {
		mapping = append(mapping, []any{l, res.Labels[l].String()})
	}
	if err := setRows(f, SheetLabels, mapping); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: writing workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
