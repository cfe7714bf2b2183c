package tax

import "netpay/internal/domain/ratetable"

// Progressive sums, over every tier the amount reaches, the slice of the amount inside
// that tier times its rate. Tables are validated at load, so no checks happen here.
func Progressive(amount float64, tiers ratetable.Tiers) float64 {
	if amount <= 0 {
		return 0
	}
	total := 0.0
	for _, tier := range tiers {
		if amount <= tier.Min {
			continue
		}
		total += (min(amount, tier.Max) - tier.Min) * tier.Rate
	}
	return total
}
