package calculatorhandler

import (
	"fmt"
	"strings"

	"netpay/internal/domain/tax"
	"netpay/internal/transport/http/shared"
)

const defaultExpenseRate = 30.0

type childPayload struct {
	Age                      *int     `json:"age"`
	SpecialNeeds             bool     `json:"special_needs"`
	MotherWaivesToFather     bool     `json:"mother_waives_to_father"`
	TransferFractionToFather *float64 `json:"transfer_fraction_to_father"`
	LivesWithParent          bool     `json:"lives_with_parent"`
}

type jobPayload struct {
	ID          string   `json:"id"`
	GrossSalary *float64 `json:"gross_salary"`
	PensionRate *float64 `json:"pension_rate"`
	IsPrimary   *bool    `json:"is_primary"`
}

type selfEmployedPayload struct {
	Type           string   `json:"type"`
	Revenue        *float64 `json:"revenue"`
	ExpenseRate    *float64 `json:"expense_rate"`
	ActualExpenses *float64 `json:"actual_expenses"`
}

type calculatePayload struct {
	EmploymentType     string               `json:"employment_type"`
	GrossSalary        *float64             `json:"gross_salary"`
	PensionRate        *float64             `json:"pension_rate"`
	Jobs               []jobPayload         `json:"jobs"`
	SelfEmployedIncome *selfEmployedPayload `json:"self_employed_income"`

	Age               *int           `json:"age"`
	Gender            string         `json:"gender"`
	IsResident        *bool          `json:"is_resident"`
	Spouse            bool           `json:"spouse"`
	SpouseIncome      *float64       `json:"spouse_income"`
	FilingMode        *string        `json:"filing_mode"`
	ForeignWorkerType *string        `json:"foreign_worker_type"`
	Children          *int           `json:"children"`
	ChildrenDetails   []childPayload `json:"children_details"`
	ParentRole        *string        `json:"parent_role"`
	IsSingleParent    bool           `json:"is_single_parent"`
	Disabled          bool           `json:"disabled"`
	NewImmigrant      bool           `json:"new_immigrant"`
	Student           bool           `json:"student"`
	ReserveDuty       bool           `json:"reserve_duty"`
}

var (
	scenarios          = []string{string(tax.ScenarioEmployee), string(tax.ScenarioMultipleEmployers), string(tax.ScenarioSelfEmployed), string(tax.ScenarioCombined)}
	genders            = []string{string(tax.GenderMale), string(tax.GenderFemale)}
	filingModes        = []string{string(tax.FilingJoint), string(tax.FilingSeparate)}
	foreignWorkerTypes = []string{string(tax.ForeignWorkerCaregiver), string(tax.ForeignWorkerOther)}
	parentRoles        = []string{string(tax.ParentMother), string(tax.ParentFather)}
	selfEmployedTypes  = []string{string(tax.SelfEmploymentExempt), string(tax.SelfEmploymentLicensed), string(tax.SelfEmploymentSmall)}
)

func enumReason(allowed []string) string {
	return "must be one of " + strings.Join(allowed, ", ")
}

// toRequest checks field shapes and builds the core request. Whether a scenario has the
// payload it needs (jobs, self-employed income) is left to the engine.
func (p calculatePayload) toRequest(v *shared.Validator) tax.Request {
	scenario := normalize(p.EmploymentType)
	v.Required("employment_type", scenario, "is required")
	v.Enum("employment_type", scenario, scenarios, enumReason(scenarios))

	if p.Age == nil {
		v.Add("age", "is required")
	}
	v.IntRange("age", p.Age, 18, 120)
	v.Enum("gender", p.Gender, genders, enumReason(genders))
	v.NonNegative("spouse_income", p.SpouseIncome)
	v.IntRange("children", p.Children, 0, 20)
	if p.FilingMode != nil {
		v.Enum("filing_mode", *p.FilingMode, filingModes, enumReason(filingModes))
	}
	if p.ForeignWorkerType != nil {
		v.Enum("foreign_worker_type", *p.ForeignWorkerType, foreignWorkerTypes, enumReason(foreignWorkerTypes))
	}
	if p.ParentRole != nil {
		v.Enum("parent_role", *p.ParentRole, parentRoles, enumReason(parentRoles))
	}

	switch tax.Scenario(scenario) {
	case tax.ScenarioEmployee, tax.ScenarioCombined:
		if p.GrossSalary == nil {
			v.Add("gross_salary", "is required for "+scenario)
		}
	}
	v.NonNegative("gross_salary", p.GrossSalary)
	v.Range("pension_rate", p.PensionRate, 0, 100)

	req := tax.Request{
		Scenario:           tax.Scenario(scenario),
		Profile:            p.profile(v),
		PensionRatePercent: p.PensionRate,
	}
	if p.GrossSalary != nil {
		req.GrossSalary = *p.GrossSalary
	}

	for i, job := range p.Jobs {
		field := fmt.Sprintf("jobs[%d]", i)
		if job.GrossSalary == nil {
			v.Add(field+".gross_salary", "is required")
		}
		v.NonNegative(field+".gross_salary", job.GrossSalary)
		v.Range(field+".pension_rate", job.PensionRate, 0, 100)

		converted := tax.EmployeeJob{ID: strings.TrimSpace(job.ID), PensionRatePercent: job.PensionRate}
		if job.GrossSalary != nil {
			converted.GrossSalary = *job.GrossSalary
		}
		if job.IsPrimary != nil {
			converted.IsPrimary = *job.IsPrimary
		}
		req.Jobs = append(req.Jobs, converted)
	}

	if se := p.SelfEmployedIncome; se != nil {
		kind := normalize(se.Type)
		v.Required("self_employed_income.type", kind, "is required")
		v.Enum("self_employed_income.type", kind, selfEmployedTypes, enumReason(selfEmployedTypes))
		if se.Revenue == nil {
			v.Add("self_employed_income.revenue", "is required")
		}
		v.NonNegative("self_employed_income.revenue", se.Revenue)
		v.Range("self_employed_income.expense_rate", se.ExpenseRate, 0, 100)
		v.NonNegative("self_employed_income.actual_expenses", se.ActualExpenses)

		activity := &tax.SelfEmployedActivity{
			Type:               tax.SelfEmploymentType(kind),
			ExpenseRatePercent: defaultExpenseRate,
			ActualExpenses:     se.ActualExpenses,
		}
		if se.Revenue != nil {
			activity.RevenueInclVAT = *se.Revenue
		}
		if se.ExpenseRate != nil {
			activity.ExpenseRatePercent = *se.ExpenseRate
		}
		req.SelfEmployed = activity
	}

	return req
}

func (p calculatePayload) profile(v *shared.Validator) tax.Profile {
	profile := tax.Profile{
		Gender:         tax.Gender(normalize(p.Gender)),
		IsResident:     true,
		Spouse:         p.Spouse,
		IsSingleParent: p.IsSingleParent,
		Disabled:       p.Disabled,
		NewImmigrant:   p.NewImmigrant,
		Student:        p.Student,
		ReserveDuty:    p.ReserveDuty,
	}
	if p.Age != nil {
		profile.Age = *p.Age
	}
	if p.IsResident != nil {
		profile.IsResident = *p.IsResident
	}
	if p.SpouseIncome != nil {
		profile.SpouseIncome = *p.SpouseIncome
	}
	if p.Children != nil {
		profile.Children = *p.Children
	}
	if p.FilingMode != nil {
		mode := tax.FilingMode(normalize(*p.FilingMode))
		profile.FilingMode = &mode
	}
	if p.ForeignWorkerType != nil {
		kind := tax.ForeignWorkerType(normalize(*p.ForeignWorkerType))
		profile.ForeignWorkerType = &kind
	}
	if p.ParentRole != nil {
		role := tax.ParentRole(normalize(*p.ParentRole))
		profile.ParentRole = &role
	}

	if p.ChildrenDetails != nil {
		profile.ChildrenDetails = make([]tax.ChildFact, 0, len(p.ChildrenDetails))
	}
	for i, child := range p.ChildrenDetails {
		field := fmt.Sprintf("children_details[%d]", i)
		v.IntRange(field+".age", child.Age, 0, 120)
		v.Range(field+".transfer_fraction_to_father", child.TransferFractionToFather, 0, 1)
		profile.ChildrenDetails = append(profile.ChildrenDetails, tax.ChildFact{
			Age:                      child.Age,
			SpecialNeeds:             child.SpecialNeeds,
			MotherWaivesToFather:     child.MotherWaivesToFather,
			TransferFractionToFather: child.TransferFractionToFather,
			LivesWithParent:          child.LivesWithParent,
		})
	}
	return profile
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
