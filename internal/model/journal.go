package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalType identifies the kind of journal for posting-permission checks.
type JournalType string

const (
	JournalTypePayment JournalType = "PAYMENT"
	JournalTypeManual  JournalType = "MANUAL"
)

// PostingContext identifies who is posting and in which tenant/company scope.
type PostingContext struct {
	TenantID  string
	CompanyID string
	UserID    string
	UserRole  string
}

// PostingLine is one row of a proposed journal.
type PostingLine struct {
	AccountID   string
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Description string
	Reference   string
}

// JournalPostingInput is the unit of work submitted for validation.
type JournalPostingInput struct {
	Context       PostingContext
	Type          JournalType
	JournalNumber string
	Description   string
	JournalDate   time.Time
	Currency      string // base posting currency
	Lines         []PostingLine
}

// Totals returns the summed debits and credits of lines.
func Totals(lines []PostingLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountIDs returns the distinct account ids referenced by lines, in
// first-appearance order.
func AccountIDs(lines []PostingLine) []string {
	seen := make(map[string]bool, len(lines))
	var ids []string
	for _, l := range lines {
		if seen[l.AccountID] {
			continue
		}
		seen[l.AccountID] = true
		ids = append(ids, l.AccountID)
	}
	return ids
}
