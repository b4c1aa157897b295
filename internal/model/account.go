package model

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in chart order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// ParseAccountType accepts either case ("asset" or "ASSET").
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AccountTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Side is the debit or credit side of a posting.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// NormalBalance returns the side on which accounts of this type increase.
func (t AccountType) NormalBalance() (Side, bool) {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit, true
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return SideCredit, true
	default:
		return "", false
	}
}

// Account is one node in the chart of accounts.
type Account struct {
	ID       string
	Code     string
	Name     string
	Type     AccountType
	Currency string // ISO 4217
	IsActive bool
	Level    int    // 0 = top-level control account
	ParentID string // empty = no parent
}

// Label is "code (name)", used in diagnostics.
func (a Account) Label() string {
	if a.Name == "" {
		return a.Code
	}
	return a.Code + " (" + a.Name + ")"
}
