package tax

type Scenario string

const (
	ScenarioEmployee          Scenario = "employee"
	ScenarioMultipleEmployers Scenario = "multiple_employers"
	ScenarioSelfEmployed      Scenario = "self_employed"
	ScenarioCombined          Scenario = "combined"
)

type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodAnnual  Period = "annual"
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

type ParentRole string

const (
	ParentMother ParentRole = "mother"
	ParentFather ParentRole = "father"
)

type FilingMode string

const (
	FilingJoint    FilingMode = "joint_filing"
	FilingSeparate FilingMode = "separate_filing"
)

type ForeignWorkerType string

const (
	ForeignWorkerCaregiver ForeignWorkerType = "caregiver"
	ForeignWorkerOther     ForeignWorkerType = "other"
)

type SelfEmploymentType string

const (
	SelfEmploymentExempt   SelfEmploymentType = "esek_patur"
	SelfEmploymentLicensed SelfEmploymentType = "esek_murshe"
	SelfEmploymentSmall    SelfEmploymentType = "esek_zair"
)

// VATLiable reports whether revenue and expenses are quoted VAT-inclusive and netted.
func (t SelfEmploymentType) VATLiable() bool {
	return t == SelfEmploymentLicensed
}

const (
	SourceTypeEmployer     = "employer"
	SourceTypeSelfEmployed = "self_employed"
)

// ChildFact describes one child. Age is required; a nil Age is a business rule error.
type ChildFact struct {
	Age                      *int
	SpecialNeeds             bool
	MotherWaivesToFather     bool
	TransferFractionToFather *float64
	LivesWithParent          bool
}

// Profile holds the demographic facts that drive credit points. Optional facts are
// pointers; nil means the caller did not say.
type Profile struct {
	Age               int
	Gender            Gender
	IsResident        bool
	Spouse            bool
	SpouseIncome      float64
	FilingMode        *FilingMode
	ForeignWorkerType *ForeignWorkerType
	Children          int
	ChildrenDetails   []ChildFact
	ParentRole        *ParentRole
	IsSingleParent    bool
	Disabled          bool
	NewImmigrant      bool
	Student           bool
	ReserveDuty       bool
}

type EmployeeJob struct {
	ID                 string
	GrossSalary        float64
	PensionRatePercent *float64
	IsPrimary          bool
}

type SelfEmployedActivity struct {
	Type               SelfEmploymentType
	RevenueInclVAT     float64
	ExpenseRatePercent float64
	ActualExpenses     *float64
}

// Request is an already validated calculation input. GrossSalary and PensionRatePercent
// describe the employee leg of the employee and combined scenarios; Jobs is used by
// multiple_employers; SelfEmployed by self_employed and combined.
type Request struct {
	Scenario           Scenario
	Profile            Profile
	GrossSalary        float64
	PensionRatePercent *float64
	Jobs               []EmployeeJob
	SelfEmployed       *SelfEmployedActivity
}

type Deductions struct {
	IncomeTax       float64 `json:"income_tax"`
	SocialInsurance float64 `json:"national_insurance"`
	HealthLevy      float64 `json:"health_tax"`
	Pension         float64 `json:"pension_employee"`
	Total           float64 `json:"total_deductions"`
}

type VATBreakdown struct {
	RevenueInclVAT  float64 `json:"revenue_incl_vat"`
	RevenueExVAT    float64 `json:"revenue_ex_vat"`
	ExpensesInclVAT float64 `json:"expenses_incl_vat"`
	ExpensesExVAT   float64 `json:"expenses_ex_vat"`
	OutputVAT       float64 `json:"vat_output"`
	InputVAT        float64 `json:"vat_input"`
	PayableVAT      float64 `json:"vat_payable"`
}

type CreditPointSummary struct {
	Entitlement float64 `json:"entitlement"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
}

// SourceBreakdown is the per-source view of a multi-source calculation. Self-employed
// sources carry the annual VAT figures in VAT; employer sources leave it nil.
type SourceBreakdown struct {
	SourceType             string        `json:"source_type"`
	SourceID               string        `json:"source_id"`
	IsPrimary              bool          `json:"is_primary"`
	Period                 Period        `json:"period"`
	Gross                  float64       `json:"gross"`
	Net                    float64       `json:"net"`
	NetCash                float64       `json:"net_cash"`
	TaxableIncome          float64       `json:"taxable_income"`
	IncomeTaxBeforeCredits float64       `json:"income_tax_before_credits"`
	Deductions             Deductions    `json:"tax_breakdown"`
	CreditPointsApplied    float64       `json:"credit_points_applied"`
	CreditPointsRemaining  float64       `json:"credit_points_remaining"`
	EffectiveTaxRate       float64       `json:"effective_tax_rate"`
	VAT                    *VATBreakdown `json:"vat"`
}

// CalculationResult always carries every field. VAT is null outside self-employment and
// Sources is empty for single-source scenarios.
type CalculationResult struct {
	Scenario         Scenario           `json:"employment_type"`
	Period           Period             `json:"period"`
	GrossIncome      float64            `json:"gross_salary"`
	NetIncome        float64            `json:"net_salary"`
	Deductions       Deductions         `json:"tax_breakdown"`
	CreditPoints     CreditPointSummary `json:"credit_points"`
	EffectiveTaxRate float64            `json:"effective_tax_rate"`
	VAT              *VATBreakdown      `json:"vat"`
	Sources          []SourceBreakdown  `json:"sources"`
}
