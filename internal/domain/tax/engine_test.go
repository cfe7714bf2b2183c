package tax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpay/internal/domain/ratetable"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(defaultTable(t))
	require.NoError(t, err)
	return engine
}

func residentMale() Profile {
	return Profile{Age: 40, Gender: GenderMale, IsResident: true}
}

func singleMother() Profile {
	return Profile{
		Age:            38,
		Gender:         GenderFemale,
		IsResident:     true,
		Children:       2,
		ParentRole:     rolePtr(ParentMother),
		IsSingleParent: true,
		ChildrenDetails: []ChildFact{
			{Age: intPtr(10), LivesWithParent: true},
			{Age: intPtr(4), LivesWithParent: true},
		},
	}
}

func TestNewEngineRejectsInvalidTable(t *testing.T) {
	broken := *defaultTable(t)
	broken.IncomeTax = nil

	_, err := NewEngine(&broken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ratetable.ErrInvalidTable))
}

func TestCalculateEmployee(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name    string
		profile Profile
		gross   float64
		want    CalculationResult
	}{
		{
			name:    "credits cover the whole tax",
			profile: singleMother(),
			gross:   15000,
			want: CalculationResult{
				Scenario:    ScenarioEmployee,
				Period:      PeriodMonthly,
				GrossIncome: 15000,
				NetIncome:   12905.37,
				Deductions: Deductions{
					IncomeTax:       0,
					SocialInsurance: 1194.63,
					Pension:         900,
					Total:           2094.63,
				},
				CreditPoints:     CreditPointSummary{Entitlement: 7.25, Used: 7.05, Remaining: 0.2},
				EffectiveTaxRate: 13.96,
				Sources:          []SourceBreakdown{},
			},
		},
		{
			name:    "credits partially cover the tax",
			profile: residentMale(),
			gross:   15000,
			want: CalculationResult{
				Scenario:    ScenarioEmployee,
				Period:      PeriodMonthly,
				GrossIncome: 15000,
				NetIncome:   11744,
				Deductions: Deductions{
					IncomeTax:       1161.37,
					SocialInsurance: 1194.63,
					Pension:         900,
					Total:           3256,
				},
				CreditPoints:     CreditPointSummary{Entitlement: 2.25, Used: 2.25, Remaining: 0},
				EffectiveTaxRate: 21.71,
				Sources:          []SourceBreakdown{},
			},
		},
		{
			name:    "zero salary",
			profile: residentMale(),
			gross:   0,
			want: CalculationResult{
				Scenario:     ScenarioEmployee,
				Period:       PeriodMonthly,
				CreditPoints: CreditPointSummary{Entitlement: 2.25, Used: 0, Remaining: 2.25},
				Sources:      []SourceBreakdown{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Calculate(Request{Scenario: ScenarioEmployee, Profile: tt.profile, GrossSalary: tt.gross})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateEmployeeHighIncome(t *testing.T) {
	got, err := newTestEngine(t).Calculate(Request{Scenario: ScenarioEmployee, Profile: residentMale(), GrossSalary: 100000})
	require.NoError(t, err)

	assert.Equal(t, 6000.0, got.Deductions.Pension)
	assert.Equal(t, 5090.43, got.Deductions.SocialInsurance)
	assert.Equal(t, 31287.09, got.Deductions.IncomeTax)
	assert.Equal(t, 57622.48, got.NetIncome)
	assert.Equal(t, 42.38, got.EffectiveTaxRate)
}

func TestCalculateEmployeeRequiresChildrenDetails(t *testing.T) {
	profile := residentMale()
	profile.Children = 2

	_, err := newTestEngine(t).Calculate(Request{Scenario: ScenarioEmployee, Profile: profile, GrossSalary: 10000})
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, RuleChildrenDetailsRequired, ruleErr.Rule)
}

func TestCalculateSelfEmployedLicensed(t *testing.T) {
	got, err := newTestEngine(t).Calculate(Request{
		Scenario: ScenarioSelfEmployed,
		Profile:  residentMale(),
		SelfEmployed: &SelfEmployedActivity{
			Type:               SelfEmploymentLicensed,
			RevenueInclVAT:     240000,
			ExpenseRatePercent: 30,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, PeriodAnnual, got.Period)
	assert.Equal(t, 142372.88, got.GrossIncome)
	assert.Equal(t, 84151.76, got.NetIncome)
	assert.Equal(t, Deductions{
		IncomeTax:       6399.84,
		SocialInsurance: 15249,
		Pension:         10945.2,
		Total:           32594.04,
	}, got.Deductions)
	assert.Equal(t, 22.89, got.EffectiveTaxRate)
	assert.Equal(t, CreditPointSummary{Entitlement: 2.25, Used: 2.25, Remaining: 0}, got.CreditPoints)
	require.NotNil(t, got.VAT)
	assert.Equal(t, VATBreakdown{
		RevenueInclVAT:  240000,
		RevenueExVAT:    203389.83,
		ExpensesInclVAT: 72000,
		ExpensesExVAT:   61016.95,
		OutputVAT:       36610.17,
		InputVAT:        10983.05,
		PayableVAT:      25627.12,
	}, *got.VAT)
	assert.Empty(t, got.Sources)
	assert.NotNil(t, got.Sources)
}

func TestCalculateSelfEmployedExempt(t *testing.T) {
	got, err := newTestEngine(t).Calculate(Request{
		Scenario: ScenarioSelfEmployed,
		Profile:  residentMale(),
		SelfEmployed: &SelfEmployedActivity{
			Type:               SelfEmploymentExempt,
			RevenueInclVAT:     100000,
			ExpenseRatePercent: 30,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 70000.0, got.GrossIncome)
	assert.Equal(t, 4227.12, got.Deductions.Total)
	assert.Equal(t, 65772.84, got.NetIncome)
	require.NotNil(t, got.VAT)
	assert.Zero(t, got.VAT.PayableVAT)
	assert.Zero(t, got.VAT.OutputVAT)
}

func TestCalculateCombined(t *testing.T) {
	got, err := newTestEngine(t).Calculate(Request{
		Scenario:    ScenarioCombined,
		Profile:     singleMother(),
		GrossSalary: 8000,
		SelfEmployed: &SelfEmployedActivity{
			Type:               SelfEmploymentLicensed,
			RevenueInclVAT:     120000,
			ExpenseRatePercent: 30,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, PeriodAnnual, got.Period)
	assert.Equal(t, 167186.4, got.GrossIncome)
	assert.Equal(t, 140107.44, got.NetIncome)
	assert.Equal(t, Deductions{
		IncomeTax:       0,
		SocialInsurance: 8505.36,
		Pension:         5760,
		Total:           14265.36,
	}, got.Deductions)
	assert.Equal(t, 8.53, got.EffectiveTaxRate)
	assert.Equal(t, CreditPointSummary{Entitlement: 7.25, Used: 5.3, Remaining: 1.95}, got.CreditPoints)

	require.Len(t, got.Sources, 2)
	employee, business := got.Sources[0], got.Sources[1]

	assert.Equal(t, SourceTypeEmployer, employee.SourceType)
	assert.Equal(t, 7165.37, employee.Net)
	assert.Equal(t, 725.55, employee.IncomeTaxBeforeCredits)
	assert.Equal(t, 3.0, employee.CreditPointsApplied)
	assert.Equal(t, 4.25, employee.CreditPointsRemaining)
	assert.Nil(t, employee.VAT)

	assert.Equal(t, SourceTypeSelfEmployed, business.SourceType)
	assert.Equal(t, PeriodMonthly, business.Period)
	assert.Equal(t, 5932.2, business.Gross)
	assert.Equal(t, 5578.05, business.Net)
	assert.Equal(t, 4510.25, business.NetCash)
	assert.Equal(t, 354.15, business.Deductions.SocialInsurance)
	assert.Zero(t, business.Deductions.IncomeTax)
	assert.Equal(t, 1.95, business.CreditPointsRemaining)
	require.NotNil(t, business.VAT)
	assert.Equal(t, 12813.55, business.VAT.PayableVAT)
	assert.Equal(t, got.VAT, business.VAT)
}

func TestCalculateCombinedRequiresSelfEmployedIncome(t *testing.T) {
	_, err := newTestEngine(t).Calculate(Request{Scenario: ScenarioCombined, Profile: residentMale(), GrossSalary: 8000})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "self_employed_income", validationErr.Field)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCalculateMultipleEmployers(t *testing.T) {
	got, err := newTestEngine(t).Calculate(Request{
		Scenario: ScenarioMultipleEmployers,
		Profile:  residentMale(),
		Jobs: []EmployeeJob{
			{ID: "main", GrossSalary: 12000, IsPrimary: true},
			{ID: "side", GrossSalary: 6000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 18000.0, got.GrossIncome)
	assert.Equal(t, 14663.0, got.NetIncome)
	assert.Equal(t, Deductions{
		IncomeTax:       1212.37,
		SocialInsurance: 1044.63,
		Pension:         1080,
		Total:           3337,
	}, got.Deductions)
	assert.Equal(t, 18.54, got.EffectiveTaxRate)

	require.Len(t, got.Sources, 2)
	assert.Equal(t, "main", got.Sources[0].SourceID)
	assert.True(t, got.Sources[0].IsPrimary)
	assert.Equal(t, 669.37, got.Sources[0].Deductions.IncomeTax)
	assert.Equal(t, 2.25, got.Sources[0].CreditPointsApplied)
	assert.Equal(t, 543.0, got.Sources[1].Deductions.IncomeTax)
	assert.Zero(t, got.Sources[1].CreditPointsApplied)
}

func TestCalculateMultipleEmployersCreditsOnlyAtPrimary(t *testing.T) {
	engine := newTestEngine(t)
	jobs := []EmployeeJob{
		{ID: "small", GrossSalary: 6000, IsPrimary: true},
		{ID: "large", GrossSalary: 12000},
	}

	got, err := engine.Calculate(Request{Scenario: ScenarioMultipleEmployers, Profile: singleMother(), Jobs: jobs})
	require.NoError(t, err)

	assert.Equal(t, 2.24, got.Sources[0].CreditPointsApplied)
	assert.Equal(t, 5.01, got.Sources[0].CreditPointsRemaining)
	assert.Zero(t, got.Sources[1].CreditPointsApplied)
	assert.Zero(t, got.Sources[1].CreditPointsRemaining)
	assert.Equal(t, 1213.87, got.Sources[1].Deductions.IncomeTax)
	assert.Equal(t, 14661.5, got.NetIncome)
	assert.Equal(t, CreditPointSummary{Entitlement: 7.25, Used: 2.24, Remaining: 5.01}, got.CreditPoints)

	// Input order decides the order of sources, not which job is charged first.
	reversed, err := engine.Calculate(Request{
		Scenario: ScenarioMultipleEmployers,
		Profile:  singleMother(),
		Jobs:     []EmployeeJob{jobs[1], jobs[0]},
	})
	require.NoError(t, err)
	assert.Equal(t, "large", reversed.Sources[0].SourceID)
	assert.Equal(t, got.Deductions, reversed.Deductions)
	assert.Equal(t, got.Sources[0], reversed.Sources[1])
}

func TestCalculateMultipleEmployersPrimarySwap(t *testing.T) {
	engine := newTestEngine(t)
	run := func(t *testing.T, first, second float64, firstPrimary bool) CalculationResult {
		t.Helper()
		got, err := engine.Calculate(Request{
			Scenario: ScenarioMultipleEmployers,
			Profile:  residentMale(),
			Jobs: []EmployeeJob{
				{ID: "a", GrossSalary: first, IsPrimary: firstPrimary},
				{ID: "b", GrossSalary: second, IsPrimary: !firstPrimary},
			},
		})
		require.NoError(t, err)
		return got
	}

	t.Run("unequal salaries", func(t *testing.T) {
		largePrimary := run(t, 12000, 6000, true)
		smallPrimary := run(t, 12000, 6000, false)

		assert.Equal(t, 1212.37, largePrimary.Deductions.IncomeTax)
		assert.Equal(t, 1213.87, smallPrimary.Deductions.IncomeTax)
		assert.Equal(t, 14663.0, largePrimary.NetIncome)
		assert.Equal(t, 14661.5, smallPrimary.NetIncome)
		assert.NotEqual(t, largePrimary.NetIncome, smallPrimary.NetIncome)
	})

	t.Run("equal salaries", func(t *testing.T) {
		first := run(t, 9000, 9000, true)
		second := run(t, 9000, 9000, false)

		assert.Equal(t, first.NetIncome, second.NetIncome)
		assert.Equal(t, first.Deductions, second.Deductions)
	})
}

func TestCalculateMultipleEmployersRules(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name string
		jobs []EmployeeJob
		rule string
	}{
		{
			name: "one job",
			jobs: []EmployeeJob{{GrossSalary: 1000, IsPrimary: true}},
			rule: RuleEmployerCount,
		},
		{
			name: "three jobs",
			jobs: []EmployeeJob{{GrossSalary: 1000, IsPrimary: true}, {GrossSalary: 1000}, {GrossSalary: 1000}},
			rule: RuleEmployerCount,
		},
		{
			name: "no primary",
			jobs: []EmployeeJob{{GrossSalary: 1000}, {GrossSalary: 1000}},
			rule: RulePrimaryEmployerCount,
		},
		{
			name: "two primaries",
			jobs: []EmployeeJob{{GrossSalary: 1000, IsPrimary: true}, {GrossSalary: 1000, IsPrimary: true}},
			rule: RulePrimaryEmployerCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Calculate(Request{Scenario: ScenarioMultipleEmployers, Profile: residentMale(), Jobs: tt.jobs})
			var ruleErr *RuleError
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, tt.rule, ruleErr.Rule)
		})
	}
}

func TestCalculateValidationErrors(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{name: "unknown scenario", req: Request{Scenario: "freelancer"}, field: "employment_type"},
		{name: "missing jobs", req: Request{Scenario: ScenarioMultipleEmployers}, field: "jobs"},
		{name: "missing business", req: Request{Scenario: ScenarioSelfEmployed}, field: "self_employed_income"},
		{
			name:  "unknown business type",
			req:   Request{Scenario: ScenarioSelfEmployed, SelfEmployed: &SelfEmployedActivity{Type: "llc"}},
			field: "self_employed_income.type",
		},
		{name: "negative salary", req: Request{Scenario: ScenarioEmployee, GrossSalary: -1}, field: "gross_salary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Calculate(tt.req)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
