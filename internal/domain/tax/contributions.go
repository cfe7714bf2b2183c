package tax

import "netpay/internal/domain/ratetable"

// Contributions computes the monthly pension, social-insurance and health figures for one
// income source. Every figure is rounded to two decimals.
type Contributions struct {
	pension         ratetable.Pension
	socialInsurance ratetable.SocialInsurance
}

func NewContributions(table *ratetable.Table) Contributions {
	return Contributions{pension: table.Pension, socialInsurance: table.SocialInsurance}
}

// EmployeePension applies the larger of the requested rate and the mandated minimum.
// There is no ceiling on the requested rate.
func (c Contributions) EmployeePension(gross float64, ratePercent *float64) float64 {
	rate := c.pension.EmployeeMinRate
	if ratePercent != nil {
		rate = max(*ratePercent/100, c.pension.EmployeeMinRate)
	}
	return round2(max(gross, 0) * rate)
}

// SelfEmployedPension is zero up to the mandatory floor; above it the income below the
// threshold and the income above it are charged at their own rates.
func (c Contributions) SelfEmployedPension(monthlyIncome float64) float64 {
	cfg := c.pension.SelfEmployed
	income := max(monthlyIncome, 0)
	if income <= cfg.MandatoryIfIncomeOver {
		return 0
	}
	below := min(income, cfg.Threshold)
	above := max(income-cfg.Threshold, 0)
	return round2(below*cfg.RateBelowThreshold + above*cfg.RateAboveThreshold)
}

func (c Contributions) EmployeeSocialInsurance(gross float64) float64 {
	return round2(Progressive(gross, c.socialInsurance.Employee))
}

func (c Contributions) SelfEmployedSocialInsurance(monthlyIncome float64) float64 {
	return round2(Progressive(monthlyIncome, c.socialInsurance.SelfEmployed))
}

// HealthLevy is not modeled: no verified rate table exists yet, so it is always zero.
// The field is still reported and summed like every other deduction.
func (c Contributions) HealthLevy(float64) float64 {
	return 0
}
