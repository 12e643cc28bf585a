package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WriteSummaryPDF renders s as a one-page A4 summary.
func WriteSummaryPDF(w io.Writer, s Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("%s: %s (%s)", s.Dataset, s.Experiment, s.Split))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Run: %s", s.RunID),
		fmt.Sprintf("Building: %d", s.Building),
		fmt.Sprintf("Window: %s", s.Window),
		fmt.Sprintf("Sample period: %d s", s.SamplePeriod),
		fmt.Sprintf("Rows: %d", s.Rows),
		fmt.Sprintf("Generated: %s", s.GeneratedAt.Format(time.RFC3339)),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	if s.Rows > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Span: %s to %s", s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Column", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Meter", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Energy (Wh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, c := range s.Columns {
		pdf.CellFormat(60, 6, c.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, c.Meter, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.1f", c.EnergyWh), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Appliance energy: %.1f Wh", s.ApplianceEnergyWh()))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: rendering pdf: %w", err)
	}
	return nil
}
