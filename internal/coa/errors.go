package coa

import (
	"fmt"

	"github.com/cleared-dev/glcore/internal/errcode"
)

// AccountRef identifies an offending account in diagnostics.
type AccountRef struct {
	ID   string
	Code string
	Name string
}

// CurrencyMismatch is an account whose currency differs from the journal's.
type CurrencyMismatch struct {
	AccountID string
	Currency  string
	Code      string
	Name      string
}

// ControlViolation is one reason an account cannot receive a posting. An
// account that is both level 0 and a parent yields two violations.
type ControlViolation struct {
	AccountID string
	Code      string
	Name      string
	Reason    string
}

// Details carries the offending accounts for a ValidationError. Only the
// fields relevant to the error's code are populated.
type Details struct {
	Missing    []string
	Inactive   []AccountRef
	Mismatches []CurrencyMismatch
	Violations []ControlViolation
}

// ValidationError is a data-integrity violation found by the rule engine.
type ValidationError struct {
	Code    errcode.Code
	Message string
	Details Details
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AccountIDs returns every offending account id in the error, for logging.
func (e *ValidationError) AccountIDs() []string {
	var ids []string
	ids = append(ids, e.Details.Missing...)
	for _, r := range e.Details.Inactive {
		ids = append(ids, r.ID)
	}
	for _, m := range e.Details.Mismatches {
		ids = append(ids, m.AccountID)
	}
	for _, v := range e.Details.Violations {
		ids = append(ids, v.AccountID)
	}
	return ids
}
