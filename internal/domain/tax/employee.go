package tax

// employeeSource runs one monthly salary through pension, social insurance, income tax
// and whatever credit points the balance still holds.
func (e *Engine) employeeSource(job EmployeeJob, balance *CreditBalance) SourceBreakdown {
	gross := job.GrossSalary
	pension := e.contributions.EmployeePension(gross, job.PensionRatePercent)
	insurance := e.contributions.EmployeeSocialInsurance(gross)
	health := e.contributions.HealthLevy(gross)

	taxable := max(gross-pension-insurance, 0)
	taxBefore := round2(Progressive(taxable, e.table.IncomeTax))
	applied := balance.Apply(taxBefore)

	total := round2(applied.TaxAfter + insurance + health + pension)
	net := round2(gross - total)

	return SourceBreakdown{
		SourceType:             SourceTypeEmployer,
		SourceID:               job.ID,
		IsPrimary:              job.IsPrimary,
		Period:                 PeriodMonthly,
		Gross:                  round2(gross),
		Net:                    net,
		NetCash:                net,
		TaxableIncome:          round2(taxable),
		IncomeTaxBeforeCredits: taxBefore,
		Deductions: Deductions{
			IncomeTax:       applied.TaxAfter,
			SocialInsurance: insurance,
			HealthLevy:      health,
			Pension:         pension,
			Total:           total,
		},
		CreditPointsApplied:   round2(applied.PointsUsed),
		CreditPointsRemaining: round2(balance.Remaining()),
		EffectiveTaxRate:      percentOf(total, gross),
	}
}

func (e *Engine) calculateEmployee(req Request) (CalculationResult, error) {
	if req.GrossSalary < 0 {
		return CalculationResult{}, &ValidationError{Field: "gross_salary", Reason: "must not be negative"}
	}
	balance, err := e.newBalance(req.Profile)
	if err != nil {
		return CalculationResult{}, err
	}

	source := e.employeeSource(EmployeeJob{
		ID:                 "employee",
		GrossSalary:        req.GrossSalary,
		PensionRatePercent: req.PensionRatePercent,
		IsPrimary:          true,
	}, balance)

	return CalculationResult{
		Scenario:         ScenarioEmployee,
		Period:           PeriodMonthly,
		GrossIncome:      source.Gross,
		NetIncome:        source.Net,
		Deductions:       source.Deductions,
		CreditPoints:     balance.Summary(),
		EffectiveTaxRate: source.EffectiveTaxRate,
		Sources:          []SourceBreakdown{},
	}, nil
}
