package tax

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrBusinessRule = errors.New("business rule violated")
)

// Business rule identifiers reported in RuleError.Rule.
const (
	RuleEmployerCount           = "employer_count"
	RulePrimaryEmployerCount    = "primary_employer_count"
	RuleChildrenDetailsRequired = "children_details_required"
	RuleChildrenCountMismatch   = "children_count_mismatch"
	RuleParentRoleRequired      = "parent_role_required"
	RuleChildAgeRequired        = "child_age_required"
	RuleFilingModeRequired      = "filing_mode_required"
)

// ValidationError reports a missing or structurally invalid scenario payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RuleError reports a request that is well-formed but ambiguous for the credit or
// employer rules. Rule names the rule that failed.
type RuleError struct {
	Rule    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return ErrBusinessRule
}

func ruleErrorf(rule, format string, args ...any) error {
	return &RuleError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
