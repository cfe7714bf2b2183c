package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders the statement as a single-page A4 PDF.
func BuildPDF(stmt Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(stmt.GeneratedAt)
	pdf.SetTitle(stmt.Title, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, stmt.Title)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Scenario: %s", stmt.Scenario))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", stmt.Period))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rate table: %d (%s)", stmt.RateTableYear, stmt.Currency))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	writeLines(pdf, "Summary", stmt.Summary)
	writeLines(pdf, "Credit points", stmt.Credits)
	if len(stmt.VAT) > 0 {
		writeLines(pdf, "VAT (annual)", stmt.VAT)
	}

	if len(stmt.Sources) > 0 {
		headers := []string{"Source", "Gross", "Income tax", "Nat. ins.", "Pension", "Net", "Points"}
		widths := []float64{46, 24, 24, 24, 22, 24, 16}
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, "Income sources (monthly)")
		pdf.Ln(7)
		pdf.SetFont("Arial", "B", 9)
		for i, header := range headers {
			pdf.CellFormat(widths[i], 6, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range stmt.Sources {
			pdf.CellFormat(widths[0], 6, row.Label, "1", 0, "L", false, 0, "")
			for i, v := range []float64{row.Gross, row.IncomeTax, row.Insurance, row.Pension, row.Net, row.Points} {
				pdf.CellFormat(widths[i+1], 6, formatAmount(v), "1", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLines(pdf *gofpdf.Fpdf, heading string, lines []Line) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, heading)
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	for _, line := range lines {
		pdf.CellFormat(80, 6, line.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, formatAmount(line.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
