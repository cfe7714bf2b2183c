package ratetable

import (
	"errors"
	"fmt"
	"math"
)

// Validate checks the structural invariants every calculation relies on. It runs once at
// load time; evaluators never re-check tables per call.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: table is nil", ErrInvalidTable)
	}
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	check(validateTiers("income_tax", t.IncomeTax))
	check(validateTiers("social_insurance.employee", t.SocialInsurance.Employee))
	check(validateTiers("social_insurance.employer", t.SocialInsurance.Employer))
	check(validateTiers("social_insurance.self_employed", t.SocialInsurance.SelfEmployed))

	check(validateRate("pension.employee_min_rate", t.Pension.EmployeeMinRate))
	check(validateRate("pension.employer_pension_rate", t.Pension.EmployerPensionRate))
	check(validateRate("pension.employer_severance_rate", t.Pension.EmployerSeveranceRate))
	se := t.Pension.SelfEmployed
	check(validateRate("pension.self_employed.rate_below_threshold", se.RateBelowThreshold))
	check(validateRate("pension.self_employed.rate_above_threshold", se.RateAboveThreshold))
	if se.MandatoryIfIncomeOver < 0 || se.Threshold < 0 {
		check(invalid("pension.self_employed: thresholds must be non-negative"))
	}

	if t.CreditPoints.PointValueMonth <= 0 {
		check(invalid("credit_points.point_value_month must be positive"))
	}
	check(validateChildCredits(t.ChildCredits))

	if t.VAT.Rate < 0 || t.VAT.Rate >= 1 || math.IsNaN(t.VAT.Rate) {
		check(invalid("vat.rate must be in [0, 1)"))
	}

	return errors.Join(errs...)
}

func validateTiers(name string, tiers Tiers) error {
	if len(tiers) == 0 {
		return invalid("%s: no tiers", name)
	}
	if tiers[0].Min != 0 {
		return invalid("%s: first tier must start at 0", name)
	}
	for i, tier := range tiers {
		if err := validateRate(fmt.Sprintf("%s[%d].rate", name, i), tier.Rate); err != nil {
			return err
		}
		if !(tier.Max > tier.Min) {
			return invalid("%s[%d]: max must be greater than min", name, i)
		}
		if i > 0 && tiers[i-1].Max != tier.Min {
			return invalid("%s[%d]: min %.2f does not continue previous max %.2f", name, i, tier.Min, tiers[i-1].Max)
		}
	}
	if !tiers[len(tiers)-1].Unbounded() {
		return invalid("%s: last tier must be unbounded", name)
	}
	return nil
}

func validateRate(name string, rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return invalid("%s must be in [0, 1]", name)
	}
	return nil
}

func validateChildCredits(c ChildCredits) error {
	for i, band := range c.Bands {
		if band.MinAge < 0 || band.MaxAge < band.MinAge {
			return invalid("child_credits.age_bands[%d]: invalid age range", i)
		}
		switch band.GrantedTo {
		case HolderMother, HolderFather, HolderDependentParent:
		default:
			return invalid("child_credits.age_bands[%d]: unknown granted_to %q", i, band.GrantedTo)
		}
		for j := i + 1; j < len(c.Bands); j++ {
			other := c.Bands[j]
			if band.MinAge <= other.MaxAge && other.MinAge <= band.MaxAge {
				return invalid("child_credits.age_bands[%d] overlaps age_bands[%d]", i, j)
			}
		}
	}
	switch c.Transfer.DefaultHolder {
	case HolderMother, HolderFather:
	default:
		return invalid("child_credits.transfer.default_holder must be mother or father")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidTable}, args...)...)
}
