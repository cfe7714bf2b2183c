package tax

// calculateCombined runs the salary first and carries any unused credit points into the
// business leg. Monthly figures are summed then annualized.
func (e *Engine) calculateCombined(req Request) (CalculationResult, error) {
	if req.GrossSalary < 0 {
		return CalculationResult{}, &ValidationError{Field: "gross_salary", Reason: "must not be negative"}
	}
	if err := validateActivity(req.SelfEmployed); err != nil {
		return CalculationResult{}, err
	}
	balance, err := e.newBalance(req.Profile)
	if err != nil {
		return CalculationResult{}, err
	}

	employee := e.employeeSource(EmployeeJob{
		ID:                 "employee",
		GrossSalary:        req.GrossSalary,
		PensionRatePercent: req.PensionRatePercent,
		IsPrimary:          true,
	}, balance)

	business := e.businessMonth(*req.SelfEmployed, balance)
	vat := business.VAT
	vatMonth := round2(vat.PayableVAT / 12)
	businessCash := round2(business.NetExVAT - vatMonth)
	profitMonth := round2(business.Profit)

	businessSource := SourceBreakdown{
		SourceType:             SourceTypeSelfEmployed,
		SourceID:               "self_employed",
		Period:                 PeriodMonthly,
		Gross:                  profitMonth,
		Net:                    business.NetExVAT,
		NetCash:                businessCash,
		TaxableIncome:          round2(business.Taxable),
		IncomeTaxBeforeCredits: business.TaxBefore,
		Deductions: Deductions{
			IncomeTax:       business.Credit.TaxAfter,
			SocialInsurance: business.Insurance,
			HealthLevy:      business.Health,
			Pension:         business.Pension,
			Total:           business.Total,
		},
		CreditPointsApplied:   round2(business.Credit.PointsUsed),
		CreditPointsRemaining: round2(balance.Remaining()),
		EffectiveTaxRate:      percentOf(business.Total, profitMonth),
		VAT:                   &vat,
	}

	emp := employee.Deductions
	biz := businessSource.Deductions
	annual := func(v float64) float64 { return round2(v * 12) }

	grossMonth := round2(employee.Gross + profitMonth)
	netMonth := round2(employee.Net + businessCash)
	grossYear := annual(grossMonth)

	deductions := Deductions{
		IncomeTax:       annual(emp.IncomeTax + biz.IncomeTax),
		SocialInsurance: annual(emp.SocialInsurance + biz.SocialInsurance),
		HealthLevy:      annual(emp.HealthLevy + biz.HealthLevy),
		Pension:         annual(emp.Pension + biz.Pension),
		Total: annual(emp.IncomeTax + emp.SocialInsurance + emp.HealthLevy + emp.Pension +
			biz.IncomeTax + biz.SocialInsurance + biz.Pension + biz.HealthLevy),
	}

	return CalculationResult{
		Scenario:         ScenarioCombined,
		Period:           PeriodAnnual,
		GrossIncome:      grossYear,
		NetIncome:        annual(netMonth),
		Deductions:       deductions,
		CreditPoints:     balance.Summary(),
		EffectiveTaxRate: percentOf(deductions.Total, grossYear),
		VAT:              &vat,
		Sources:          []SourceBreakdown{employee, businessSource},
	}, nil
}
