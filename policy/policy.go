/*
Package policy converts structured leave-policy JSON into typed policy
objects.

PURPOSE:
  An external authoring capability turns free-text policy descriptions
  into a structured document: a policy name plus one rule per employee
  type. This package validates and materializes that document. The
  workflow core does not consume or enforce the result - the policy
  engine is an independent generator whose output HR reviews before
  adoption.

JSON SCHEMA:
  {
    "policyName": "Standard Leave Policy",
    "rules": [
      {
        "employeeType": "Full-Time",
        "probationMonths": 3,
        "paidLeaveDays": 18,
        "unpaidLeaveDays": 12,
        "accrualRatePerMonth": 1.5
      }
    ]
  }

VALIDATION:
  - policyName non-empty
  - at least one rule
  - employee types known and not duplicated
  - day counts and rates non-negative
*/
package policy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp/workforce-engine/workforce"
)

// Sentinel errors for document validation.
var (
	ErrEmptyName        = errors.New("policy name is empty")
	ErrNoRules          = errors.New("policy has no rules")
	ErrUnknownType      = errors.New("unknown employee type")
	ErrDuplicateType    = errors.New("duplicate employee type rule")
	ErrNegativeQuantity = errors.New("negative day count or accrual rate")
)

// Rule is one employee type's entitlement under a policy.
type Rule struct {
	EmployeeType        workforce.EmployeeType `json:"employeeType"`
	ProbationMonths     int                    `json:"probationMonths"`
	PaidLeaveDays       int                    `json:"paidLeaveDays"`
	UnpaidLeaveDays     int                    `json:"unpaidLeaveDays"`
	AccrualRatePerMonth float64                `json:"accrualRatePerMonth"`
}

// Policy is a validated leave policy document.
type Policy struct {
	Name  string `json:"policyName"`
	Rules []Rule `json:"rules"`
}

// Parse decodes and validates a policy document.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("malformed policy document: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the document invariants.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if len(p.Rules) == 0 {
		return ErrNoRules
	}

	seen := make(map[workforce.EmployeeType]bool, len(p.Rules))
	for _, r := range p.Rules {
		switch r.EmployeeType {
		case workforce.FullTime, workforce.Contract:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownType, r.EmployeeType)
		}
		if seen[r.EmployeeType] {
			return fmt.Errorf("%w: %q", ErrDuplicateType, r.EmployeeType)
		}
		seen[r.EmployeeType] = true

		if r.PaidLeaveDays < 0 || r.UnpaidLeaveDays < 0 ||
			r.ProbationMonths < 0 || r.AccrualRatePerMonth < 0 {
			return fmt.Errorf("%w: rule for %q", ErrNegativeQuantity, r.EmployeeType)
		}
	}
	return nil
}

// RuleFor returns the rule for an employee type, if the policy has one.
func (p *Policy) RuleFor(t workforce.EmployeeType) (Rule, bool) {
	for _, r := range p.Rules {
		if r.EmployeeType == t {
			return r, true
		}
	}
	return Rule{}, false
}

// InitialBalance is the leave balance a new hire of the given type
// would start with under this policy.
func (p *Policy) InitialBalance(t workforce.EmployeeType) workforce.LeaveBalance {
	r, ok := p.RuleFor(t)
	if !ok {
		return workforce.LeaveBalance{}
	}
	return workforce.LeaveBalance{Paid: r.PaidLeaveDays, Unpaid: r.UnpaidLeaveDays}
}
