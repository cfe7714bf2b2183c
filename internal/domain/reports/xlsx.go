package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "summary"
	sourcesSheet = "sources"
)

// BuildXLSX renders the statement as a workbook with a summary sheet and, for multi-source
// results, a sources sheet. Amounts are written as numbers.
func BuildXLSX(stmt Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", stmt.Title)
	_ = f.SetCellValue(summarySheet, "A3", "Scenario")
	_ = f.SetCellValue(summarySheet, "B3", stmt.Scenario)
	_ = f.SetCellValue(summarySheet, "A4", "Period")
	_ = f.SetCellValue(summarySheet, "B4", stmt.Period)
	_ = f.SetCellValue(summarySheet, "A5", "Rate table year")
	_ = f.SetCellValue(summarySheet, "B5", stmt.RateTableYear)
	_ = f.SetCellValue(summarySheet, "A6", "Currency")
	_ = f.SetCellValue(summarySheet, "B6", stmt.Currency)
	_ = f.SetCellValue(summarySheet, "A7", "Generated")
	_ = f.SetCellValue(summarySheet, "B7", stmt.GeneratedAt.Format(time.RFC3339))

	row := 9
	for _, section := range []struct {
		heading string
		lines   []Line
	}{
		{heading: "Summary", lines: stmt.Summary},
		{heading: "Credit points", lines: stmt.Credits},
		{heading: "VAT (annual)", lines: stmt.VAT},
	} {
		if len(section.lines) == 0 {
			continue
		}
		_ = f.SetCellValue(summarySheet, cell("A", row), section.heading)
		row++
		for _, line := range section.lines {
			_ = f.SetCellValue(summarySheet, cell("A", row), line.Label)
			_ = f.SetCellValue(summarySheet, cell("B", row), amount(line.Amount))
			row++
		}
		row++
	}

	if len(stmt.Sources) > 0 {
		if _, err := f.NewSheet(sourcesSheet); err != nil {
			return nil, err
		}
		headers := []string{"Source", "Gross", "Income tax", "National insurance", "Pension", "Net", "Net cash", "Credit points"}
		for i, header := range headers {
			_ = f.SetCellValue(sourcesSheet, cell(column(i), 1), header)
		}
		for i, src := range stmt.Sources {
			r := i + 2
			_ = f.SetCellValue(sourcesSheet, cell("A", r), src.Label)
			for j, v := range []float64{src.Gross, src.IncomeTax, src.Insurance, src.Pension, src.Net, src.NetCash, src.Points} {
				_ = f.SetCellValue(sourcesSheet, cell(column(j+1), r), amount(v))
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func column(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

// amount keeps the cell numeric while fixing it to cents.
func amount(v float64) float64 {
	f, _ := decimalFixed(v).Float64()
	return f
}
