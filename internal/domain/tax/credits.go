package tax

import (
	"fmt"

	"netpay/internal/domain/ratetable"
)

// CreditAllocator computes how many credit points a taxpayer holds. It never guesses:
// anything that would change the total but is missing from the profile is an error.
type CreditAllocator struct {
	points   ratetable.CreditPoints
	children ratetable.ChildCredits
}

func NewCreditAllocator(table *ratetable.Table) CreditAllocator {
	return CreditAllocator{points: table.CreditPoints, children: table.ChildCredits}
}

// Entitlement returns the total credit points for the profile, rounded to two decimals.
func (a CreditAllocator) Entitlement(p Profile) (float64, error) {
	points := 0.0

	if p.IsResident {
		points += a.points.Resident
	}

	female := p.Gender == GenderFemale
	if female {
		points += a.points.Woman
	}

	if p.Spouse {
		if p.FilingMode == nil {
			return 0, ruleErrorf(RuleFilingModeRequired, "filing_mode must be joint_filing or separate_filing when spouse is set")
		}
		switch *p.FilingMode {
		case FilingJoint:
			points += a.points.DependentSpouse.JointFiling
		case FilingSeparate:
			points += a.points.DependentSpouse.SeparateFiling
		default:
			return 0, ruleErrorf(RuleFilingModeRequired, "unknown filing_mode %q", *p.FilingMode)
		}
	}

	if p.ForeignWorkerType != nil {
		switch *p.ForeignWorkerType {
		case ForeignWorkerCaregiver:
			points += a.points.ForeignWorker.Caregiver
		case ForeignWorkerOther:
			points += a.points.ForeignWorker.Other
		default:
			return 0, &ValidationError{Field: "foreign_worker_type", Reason: fmt.Sprintf("has unknown value %q", *p.ForeignWorkerType)}
		}
		if female {
			points += a.points.ForeignWorker.FemaleExtra
		}
	}

	childPoints, err := a.childrenPoints(p)
	if err != nil {
		return 0, err
	}
	points += childPoints

	return round2(points), nil
}

func (a CreditAllocator) childrenPoints(p Profile) (float64, error) {
	if p.ChildrenDetails == nil {
		if p.Children > 0 {
			return 0, ruleErrorf(RuleChildrenDetailsRequired, "children_details is required to allocate credit points for %d children", p.Children)
		}
		return 0, nil
	}
	if p.Children > 0 && p.Children != len(p.ChildrenDetails) {
		return 0, ruleErrorf(RuleChildrenCountMismatch, "children is %d but children_details lists %d", p.Children, len(p.ChildrenDetails))
	}
	if len(p.ChildrenDetails) == 0 {
		return 0, nil
	}
	if p.ParentRole == nil || (*p.ParentRole != ParentMother && *p.ParentRole != ParentFather) {
		return 0, ruleErrorf(RuleParentRoleRequired, "parent_role must be mother or father to allocate child credit points")
	}

	total := 0.0
	for i, child := range p.ChildrenDetails {
		if child.Age == nil {
			return 0, ruleErrorf(RuleChildAgeRequired, "children_details[%d] is missing age", i)
		}
		total += a.childPoints(child, *p.ParentRole, p.IsSingleParent)
	}
	return total, nil
}

// childPoints returns the share of one child's credits attributed to role.
//
// Every component has a single holder. Special-needs and single-parent credits follow the
// default holder, as does an age band granted to a specific parent; a mother's waiver moves
// them to the father when policy permits it. A band granted to the dependent parent goes to
// whoever holds the child by default after the waiver. A recorded fractional transfer scales
// each component to the asking parent's share (mother 1 - fraction, father fraction) before
// the holder filter, so it never moves points away from the holder.
func (a CreditAllocator) childPoints(child ChildFact, role ParentRole, singleParent bool) float64 {
	transfer := a.children.Transfer
	caller := ratetable.Holder(role)

	resolve := func(granted ratetable.Holder) ratetable.Holder {
		if granted == ratetable.HolderMother && child.MotherWaivesToFather && transfer.FatherIfMotherWaives {
			return ratetable.HolderFather
		}
		return granted
	}
	defaultHolder := resolve(transfer.DefaultHolder)

	type component struct {
		points float64
		holder ratetable.Holder
	}
	var components []component

	if child.SpecialNeeds {
		components = append(components, component{points: a.children.SpecialNeeds, holder: defaultHolder})
	}
	if band, ok := a.children.BandFor(*child.Age); ok {
		holder := defaultHolder
		if band.GrantedTo != ratetable.HolderDependentParent {
			holder = resolve(band.GrantedTo)
		}
		components = append(components, component{points: band.Points, holder: holder})
	}
	if singleParent && child.LivesWithParent {
		components = append(components, component{points: a.children.SingleParentExtra, holder: defaultHolder})
	}

	share := 1.0
	if transfer.PartialTransferAllowed && child.TransferFractionToFather != nil {
		fraction := min(max(*child.TransferFractionToFather, 0), 1)
		share = 1 - fraction
		if role == ParentFather {
			share = fraction
		}
	}

	total := 0.0
	for _, c := range components {
		if c.holder == caller {
			total += c.points * share
		}
	}
	return total
}

// CreditBalance is the running credit-point total of one calculation. Points are applied
// to income sources in call order and are never granted twice.
type CreditBalance struct {
	pointValue  float64
	entitlement float64
	remaining   float64
}

func NewCreditBalance(entitlement, pointValue float64) *CreditBalance {
	entitlement = max(entitlement, 0)
	return &CreditBalance{pointValue: pointValue, entitlement: entitlement, remaining: entitlement}
}

// CreditApplication is the outcome of applying the balance to one tax amount.
type CreditApplication struct {
	TaxAfter   float64
	PointsUsed float64
}

// Apply reduces taxBefore by as many points as it needs. When the balance covers the tax
// fully only tax/pointValue points are consumed and the rest stays available; otherwise
// the whole balance is consumed.
func (b *CreditBalance) Apply(taxBefore float64) CreditApplication {
	taxBefore = max(taxBefore, 0)
	if taxBefore == 0 || b.remaining <= 0 {
		return CreditApplication{TaxAfter: round2(taxBefore)}
	}

	reduction := b.remaining * b.pointValue
	if reduction >= taxBefore {
		used := taxBefore / b.pointValue
		b.remaining = max(b.remaining-used, 0)
		return CreditApplication{TaxAfter: 0, PointsUsed: used}
	}

	used := b.remaining
	b.remaining = 0
	return CreditApplication{TaxAfter: round2(taxBefore - reduction), PointsUsed: used}
}

func (b *CreditBalance) Remaining() float64 {
	return b.remaining
}

func (b *CreditBalance) Summary() CreditPointSummary {
	return CreditPointSummary{
		Entitlement: round2(b.entitlement),
		Used:        round2(b.entitlement - b.remaining),
		Remaining:   round2(b.remaining),
	}
}
