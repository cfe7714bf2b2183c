package tax

import (
	"fmt"

	"netpay/internal/domain/ratetable"
)

// Engine routes a request to its scenario and assembles the result. It holds only the
// read-only rate table, so one Engine serves any number of concurrent calculations.
type Engine struct {
	table         *ratetable.Table
	contributions Contributions
	credits       CreditAllocator
}

func NewEngine(table *ratetable.Table) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("tax engine: %w", err)
	}
	return &Engine{
		table:         table,
		contributions: NewContributions(table),
		credits:       NewCreditAllocator(table),
	}, nil
}

func (e *Engine) Table() *ratetable.Table {
	return e.table
}

// CreditPoints returns the profile's total credit-point entitlement.
func (e *Engine) CreditPoints(p Profile) (float64, error) {
	return e.credits.Entitlement(p)
}

func (e *Engine) Calculate(req Request) (CalculationResult, error) {
	switch req.Scenario {
	case ScenarioEmployee:
		return e.calculateEmployee(req)
	case ScenarioMultipleEmployers:
		return e.calculateMultipleEmployers(req)
	case ScenarioSelfEmployed:
		return e.calculateSelfEmployed(req)
	case ScenarioCombined:
		return e.calculateCombined(req)
	default:
		return CalculationResult{}, &ValidationError{Field: "employment_type", Reason: fmt.Sprintf("has unknown value %q", req.Scenario)}
	}
}

func (e *Engine) newBalance(p Profile) (*CreditBalance, error) {
	entitlement, err := e.credits.Entitlement(p)
	if err != nil {
		return nil, err
	}
	return NewCreditBalance(entitlement, e.table.CreditPoints.PointValueMonth), nil
}
