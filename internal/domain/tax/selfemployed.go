package tax

import "fmt"

// businessMonth is the monthly view of a self-employed activity after VAT netting.
// Profit is the unrounded annual profit divided by twelve.
type businessMonth struct {
	VAT        VATBreakdown
	ProfitYear float64
	Profit     float64
	Pension    float64
	Insurance  float64
	Health     float64
	Taxable    float64
	TaxBefore  float64
	Credit     CreditApplication
	Total      float64
	NetExVAT   float64
}

func validateActivity(activity *SelfEmployedActivity) error {
	if activity == nil {
		return &ValidationError{Field: "self_employed_income", Reason: "is required"}
	}
	switch activity.Type {
	case SelfEmploymentExempt, SelfEmploymentLicensed, SelfEmploymentSmall:
	default:
		return &ValidationError{Field: "self_employed_income.type", Reason: fmt.Sprintf("has unknown value %q", activity.Type)}
	}
	if activity.RevenueInclVAT < 0 {
		return &ValidationError{Field: "self_employed_income.revenue", Reason: "must not be negative"}
	}
	if activity.ExpenseRatePercent < 0 || activity.ExpenseRatePercent > 100 {
		return &ValidationError{Field: "self_employed_income.expense_rate", Reason: "must be between 0 and 100"}
	}
	return nil
}

func (e *Engine) businessMonth(activity SelfEmployedActivity, balance *CreditBalance) businessMonth {
	vat := netVAT(activity, e.table.VAT.Rate)
	profitYear := round2(max(vat.RevenueExVAT-vat.ExpensesExVAT, 0))
	profit := profitYear / 12

	pension := e.contributions.SelfEmployedPension(profit)
	insurance := e.contributions.SelfEmployedSocialInsurance(profit)
	health := e.contributions.HealthLevy(profit)

	taxable := max(profit-pension-insurance, 0)
	taxBefore := round2(Progressive(taxable, e.table.IncomeTax))
	applied := balance.Apply(taxBefore)

	total := round2(applied.TaxAfter + pension + insurance + health)
	return businessMonth{
		VAT:        vat,
		ProfitYear: profitYear,
		Profit:     profit,
		Pension:    pension,
		Insurance:  insurance,
		Health:     health,
		Taxable:    taxable,
		TaxBefore:  taxBefore,
		Credit:     applied,
		Total:      total,
		NetExVAT:   round2(profit - total),
	}
}

// calculateSelfEmployed reports annual figures. Monthly contributions are computed on a
// twelfth of the profit and scaled back up.
func (e *Engine) calculateSelfEmployed(req Request) (CalculationResult, error) {
	if err := validateActivity(req.SelfEmployed); err != nil {
		return CalculationResult{}, err
	}
	balance, err := e.newBalance(req.Profile)
	if err != nil {
		return CalculationResult{}, err
	}

	month := e.businessMonth(*req.SelfEmployed, balance)
	annual := func(v float64) float64 { return round2(v * 12) }

	deductions := Deductions{
		IncomeTax:       annual(month.Credit.TaxAfter),
		SocialInsurance: annual(month.Insurance),
		HealthLevy:      annual(month.Health),
		Pension:         annual(month.Pension),
		Total:           annual(month.Total),
	}
	netYear := annual(month.NetExVAT)
	vat := month.VAT

	return CalculationResult{
		Scenario:         ScenarioSelfEmployed,
		Period:           PeriodAnnual,
		GrossIncome:      month.ProfitYear,
		NetIncome:        round2(netYear - vat.PayableVAT),
		Deductions:       deductions,
		CreditPoints:     balance.Summary(),
		EffectiveTaxRate: percentOf(deductions.Total, month.ProfitYear),
		VAT:              &vat,
		Sources:          []SourceBreakdown{},
	}, nil
}
