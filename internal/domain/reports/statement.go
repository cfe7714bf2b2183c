package reports

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"netpay/internal/domain/tax"
)

type Line struct {
	Label  string
	Amount float64
}

// SourceRow is one income source as printed on a statement.
type SourceRow struct {
	Label     string
	Gross     float64
	IncomeTax float64
	Insurance float64
	Pension   float64
	Net       float64
	NetCash   float64
	Points    float64
}

// Statement is the printable view of a calculation result shared by the PDF and XLSX renderers.
type Statement struct {
	Title         string
	Scenario      string
	Period        string
	Currency      string
	RateTableYear int
	GeneratedAt   time.Time
	Summary       []Line
	Credits       []Line
	VAT           []Line
	Sources       []SourceRow
}

func NewStatement(result tax.CalculationResult, rateTableYear int, currency string, generatedAt time.Time) Statement {
	d := result.Deductions
	stmt := Statement{
		Title:         "Net Income Statement",
		Scenario:      string(result.Scenario),
		Period:        string(result.Period),
		Currency:      currency,
		RateTableYear: rateTableYear,
		GeneratedAt:   generatedAt.UTC(),
		Summary: []Line{
			{Label: "Gross income", Amount: result.GrossIncome},
			{Label: "Income tax", Amount: d.IncomeTax},
			{Label: "National insurance", Amount: d.SocialInsurance},
			{Label: "Health tax", Amount: d.HealthLevy},
			{Label: "Pension (employee)", Amount: d.Pension},
			{Label: "Total deductions", Amount: d.Total},
			{Label: "Net income", Amount: result.NetIncome},
			{Label: "Effective tax rate (%)", Amount: result.EffectiveTaxRate},
		},
		Credits: []Line{
			{Label: "Credit points entitled", Amount: result.CreditPoints.Entitlement},
			{Label: "Credit points used", Amount: result.CreditPoints.Used},
			{Label: "Credit points remaining", Amount: result.CreditPoints.Remaining},
		},
	}
	if v := result.VAT; v != nil {
		stmt.VAT = []Line{
			{Label: "Revenue incl. VAT", Amount: v.RevenueInclVAT},
			{Label: "Revenue ex. VAT", Amount: v.RevenueExVAT},
			{Label: "Expenses incl. VAT", Amount: v.ExpensesInclVAT},
			{Label: "Expenses ex. VAT", Amount: v.ExpensesExVAT},
			{Label: "Output VAT", Amount: v.OutputVAT},
			{Label: "Input VAT", Amount: v.InputVAT},
			{Label: "VAT payable", Amount: v.PayableVAT},
		}
	}
	stmt.Sources = lo.Map(result.Sources, func(s tax.SourceBreakdown, _ int) SourceRow {
		label := s.SourceType
		if s.SourceID != "" {
			label = fmt.Sprintf("%s (%s)", s.SourceID, s.SourceType)
		}
		if s.IsPrimary {
			label += " *"
		}
		return SourceRow{
			Label:     label,
			Gross:     s.Gross,
			IncomeTax: s.Deductions.IncomeTax,
			Insurance: s.Deductions.SocialInsurance,
			Pension:   s.Deductions.Pension,
			Net:       s.Net,
			NetCash:   s.NetCash,
			Points:    s.CreditPointsApplied,
		}
	})
	return stmt
}

// FileName is the suggested download name for the statement in the given format.
func (s Statement) FileName(ext string) string {
	return fmt.Sprintf("netpay-%s-%s.%s", s.Scenario, s.GeneratedAt.Format("20060102-150405"), ext)
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func decimalFixed(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
