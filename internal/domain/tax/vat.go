package tax

// VATSplit is a VAT-inclusive amount separated into its net and tax parts.
type VATSplit struct {
	ExVAT float64
	VAT   float64
}

// SplitVAT removes VAT from a VAT-inclusive amount. Both parts are rounded only after
// the split so that ExVAT + VAT stays within a cent of the input.
func SplitVAT(inclVAT, rate float64) VATSplit {
	incl := max(inclVAT, 0)
	exVAT := incl / (1 + rate)
	return VATSplit{ExVAT: round2(exVAT), VAT: round2(incl - exVAT)}
}

// netVAT builds the annual VAT view of a self-employed activity. Non-liable activities
// pass revenue and expenses through with zero VAT.
func netVAT(activity SelfEmployedActivity, rate float64) VATBreakdown {
	revenue := activity.RevenueInclVAT
	expenses := activityExpenses(activity)

	if !activity.Type.VATLiable() {
		return VATBreakdown{
			RevenueInclVAT:  round2(revenue),
			RevenueExVAT:    round2(revenue),
			ExpensesInclVAT: round2(expenses),
			ExpensesExVAT:   round2(expenses),
		}
	}

	out := SplitVAT(revenue, rate)
	in := SplitVAT(expenses, rate)
	return VATBreakdown{
		RevenueInclVAT:  round2(revenue),
		RevenueExVAT:    out.ExVAT,
		ExpensesInclVAT: round2(expenses),
		ExpensesExVAT:   in.ExVAT,
		OutputVAT:       out.VAT,
		InputVAT:        in.VAT,
		PayableVAT:      round2(max(out.VAT-in.VAT, 0)),
	}
}

// activityExpenses prefers actual expenses when given and positive, otherwise derives
// them from the expense ratio.
func activityExpenses(activity SelfEmployedActivity) float64 {
	if activity.ActualExpenses != nil && *activity.ActualExpenses > 0 {
		return *activity.ActualExpenses
	}
	return activity.RevenueInclVAT * (activity.ExpenseRatePercent / 100)
}
