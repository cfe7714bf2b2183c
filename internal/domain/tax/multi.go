package tax

import (
	"fmt"

	"github.com/samber/lo"
)

// calculateMultipleEmployers computes two concurrent salaries. Credit points are applied at
// the primary job only; the secondary job is taxed without credits and any points the
// primary job leaves unused stay unused.
func (e *Engine) calculateMultipleEmployers(req Request) (CalculationResult, error) {
	if len(req.Jobs) == 0 {
		return CalculationResult{}, &ValidationError{Field: "jobs", Reason: "are required for multiple_employers"}
	}
	if len(req.Jobs) != 2 {
		return CalculationResult{}, ruleErrorf(RuleEmployerCount, "multiple_employers requires exactly 2 jobs, got %d", len(req.Jobs))
	}
	for i, job := range req.Jobs {
		if job.GrossSalary < 0 {
			return CalculationResult{}, &ValidationError{Field: fmt.Sprintf("jobs[%d].gross_salary", i), Reason: "must not be negative"}
		}
	}
	if primaries := lo.CountBy(req.Jobs, func(job EmployeeJob) bool { return job.IsPrimary }); primaries != 1 {
		return CalculationResult{}, ruleErrorf(RulePrimaryEmployerCount, "exactly one job must be marked primary, got %d", primaries)
	}

	balance, err := e.newBalance(req.Profile)
	if err != nil {
		return CalculationResult{}, err
	}

	_, primary, _ := lo.FindIndexOf(req.Jobs, func(job EmployeeJob) bool { return job.IsPrimary })
	order := []int{primary, 1 - primary}

	sources := make([]SourceBreakdown, len(req.Jobs))
	for _, idx := range order {
		job := req.Jobs[idx]
		if job.ID == "" {
			job.ID = fmt.Sprintf("job%d", idx+1)
		}
		if job.PensionRatePercent == nil {
			job.PensionRatePercent = req.PensionRatePercent
		}
		jobBalance := balance
		if idx != primary {
			jobBalance = NewCreditBalance(0, e.table.CreditPoints.PointValueMonth)
		}
		sources[idx] = e.employeeSource(job, jobBalance)
	}

	sum := func(field func(SourceBreakdown) float64) float64 {
		return round2(lo.SumBy(sources, field))
	}
	gross := sum(func(s SourceBreakdown) float64 { return s.Gross })
	deductions := Deductions{
		IncomeTax:       sum(func(s SourceBreakdown) float64 { return s.Deductions.IncomeTax }),
		SocialInsurance: sum(func(s SourceBreakdown) float64 { return s.Deductions.SocialInsurance }),
		HealthLevy:      sum(func(s SourceBreakdown) float64 { return s.Deductions.HealthLevy }),
		Pension:         sum(func(s SourceBreakdown) float64 { return s.Deductions.Pension }),
		Total:           sum(func(s SourceBreakdown) float64 { return s.Deductions.Total }),
	}

	return CalculationResult{
		Scenario:         ScenarioMultipleEmployers,
		Period:           PeriodMonthly,
		GrossIncome:      gross,
		NetIncome:        sum(func(s SourceBreakdown) float64 { return s.Net }),
		Deductions:       deductions,
		CreditPoints:     balance.Summary(),
		EffectiveTaxRate: percentOf(deductions.Total, gross),
		Sources:          sources,
	}, nil
}
