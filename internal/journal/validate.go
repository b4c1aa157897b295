package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/errcode"
	"github.com/cleared-dev/glcore/internal/model"
)

// LineError describes a structurally invalid journal.
type LineError struct {
	Code      errcode.Code
	Index     int // -1 when not tied to a line
	AccountID string
	Message   string
}

func (e *LineError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: line %d [%s]: %s", e.Code, e.Index+1, e.AccountID, e.Message)
}

// BalanceError reports debits and credits that differ by more than the epsilon.
type BalanceError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal
	Epsilon     decimal.Decimal
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: debits (%s) != credits (%s), difference %s exceeds %s",
		errcode.UnbalancedJournal,
		e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2),
		e.Difference.String(), e.Epsilon.String())
}

// CheckLines enforces the structural invariants of a journal: at least one
// line and no negative amounts. A line carrying both a debit and a credit is
// structurally allowed here.
func CheckLines(lines []model.PostingLine) error {
	if len(lines) == 0 {
		return &LineError{Code: errcode.EmptyJournal, Index: -1, Message: "journal must have at least one line"}
	}
	for i, l := range lines {
		if l.Debit.IsNegative() {
			return &LineError{Code: errcode.NegativeAmount, Index: i, AccountID: l.AccountID,
				Message: fmt.Sprintf("debit %s is negative", l.Debit)}
		}
		if l.Credit.IsNegative() {
			return &LineError{Code: errcode.NegativeAmount, Index: i, AccountID: l.AccountID,
				Message: fmt.Sprintf("credit %s is negative", l.Credit)}
		}
	}
	return nil
}

// CheckBalance requires |sum(debit) - sum(credit)| <= eps. It never adjusts
// lines to make them balance.
func CheckBalance(lines []model.PostingLine, eps decimal.Decimal) error {
	debit, credit := model.Totals(lines)
	if model.WithinEpsilon(debit, credit, eps) {
		return nil
	}
	return &BalanceError{
		TotalDebit:  debit,
		TotalCredit: credit,
		Difference:  debit.Sub(credit).Abs(),
		Epsilon:     eps,
	}
}
