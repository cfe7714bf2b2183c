package ratetable

import "math"

// Tier is a [Min, Max) income band taxed at Rate. Max is +Inf for the open-ended top band.
type Tier struct {
	Min  float64
	Max  float64
	Rate float64
}

type Tiers []Tier

func (t Tier) Unbounded() bool {
	return math.IsInf(t.Max, 1)
}

type SocialInsurance struct {
	Employee     Tiers `yaml:"employee" json:"employee"`
	Employer     Tiers `yaml:"employer" json:"employer"`
	SelfEmployed Tiers `yaml:"self_employed" json:"self_employed"`
}

type SelfEmployedPension struct {
	MandatoryIfIncomeOver float64 `yaml:"mandatory_if_income_over" json:"mandatory_if_income_over"`
	Threshold             float64 `yaml:"threshold" json:"threshold"`
	RateBelowThreshold    float64 `yaml:"rate_below_threshold" json:"rate_below_threshold"`
	RateAboveThreshold    float64 `yaml:"rate_above_threshold" json:"rate_above_threshold"`
}

type Pension struct {
	EmployeeMinRate       float64             `yaml:"employee_min_rate" json:"employee_min_rate"`
	EmployerPensionRate   float64             `yaml:"employer_pension_rate" json:"employer_pension_rate"`
	EmployerSeveranceRate float64             `yaml:"employer_severance_rate" json:"employer_severance_rate"`
	SelfEmployed          SelfEmployedPension `yaml:"self_employed" json:"self_employed"`
}

type DependentSpouse struct {
	JointFiling    float64 `yaml:"joint_filing" json:"joint_filing"`
	SeparateFiling float64 `yaml:"separate_filing" json:"separate_filing"`
}

type ForeignWorker struct {
	Caregiver   float64 `yaml:"caregiver" json:"caregiver"`
	Other       float64 `yaml:"other" json:"other"`
	FemaleExtra float64 `yaml:"female_extra" json:"female_extra"`
}

type CreditPoints struct {
	PointValueMonth float64         `yaml:"point_value_month" json:"point_value_month"`
	Resident        float64         `yaml:"resident" json:"resident"`
	Woman           float64         `yaml:"woman" json:"woman"`
	DependentSpouse DependentSpouse `yaml:"dependent_spouse" json:"dependent_spouse"`
	ForeignWorker   ForeignWorker   `yaml:"foreign_worker" json:"foreign_worker"`
}

// Holder names who receives a child credit.
type Holder string

const (
	HolderMother          Holder = "mother"
	HolderFather          Holder = "father"
	HolderDependentParent Holder = "dependent_parent"
)

type AgeBand struct {
	Key       string  `yaml:"key" json:"key"`
	MinAge    int     `yaml:"min_age" json:"min_age"`
	MaxAge    int     `yaml:"max_age" json:"max_age"`
	Points    float64 `yaml:"points" json:"points"`
	GrantedTo Holder  `yaml:"granted_to" json:"granted_to"`
}

func (b AgeBand) Contains(age int) bool {
	return age >= b.MinAge && age <= b.MaxAge
}

type TransferRules struct {
	DefaultHolder          Holder `yaml:"default_holder" json:"default_holder"`
	FatherIfMotherWaives   bool   `yaml:"father_possible_if_mother_waives" json:"father_possible_if_mother_waives"`
	PartialTransferAllowed bool   `yaml:"partial_transfer_allowed" json:"partial_transfer_allowed"`
}

type ChildCredits struct {
	Bands             []AgeBand     `yaml:"age_bands" json:"age_bands"`
	SpecialNeeds      float64       `yaml:"special_needs" json:"special_needs"`
	SingleParentExtra float64       `yaml:"single_parent_extra" json:"single_parent_extra"`
	Transfer          TransferRules `yaml:"transfer" json:"transfer"`
}

// BandFor returns the single age band covering age. Bands never overlap, so at most one matches.
func (c ChildCredits) BandFor(age int) (AgeBand, bool) {
	for _, band := range c.Bands {
		if band.Contains(age) {
			return band, true
		}
	}
	return AgeBand{}, false
}

type VAT struct {
	Rate float64 `yaml:"rate" json:"rate"`
}

// Table is the full set of monthly rates for one tax year. It is built once,
// validated, and then shared read-only by every calculation.
type Table struct {
	Year            int             `yaml:"year" json:"year"`
	Currency        string          `yaml:"currency" json:"currency"`
	IncomeTax       Tiers           `yaml:"income_tax" json:"income_tax"`
	SocialInsurance SocialInsurance `yaml:"social_insurance" json:"social_insurance"`
	Pension         Pension         `yaml:"pension" json:"pension"`
	CreditPoints    CreditPoints    `yaml:"credit_points" json:"credit_points"`
	ChildCredits    ChildCredits    `yaml:"child_credits" json:"child_credits"`
	VAT             VAT             `yaml:"vat" json:"vat"`
}
