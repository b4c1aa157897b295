package accounts

import "github.com/cleared-dev/glcore/internal/model"

// DefaultChart returns a starter chart of accounts in the given currency.
// Level-0 rows and rows with children are control accounts.
func DefaultChart(currency string) []model.Account {
	if currency == "" {
		currency = "MYR"
	}
	type row struct {
		code, name string
		typ        model.AccountType
		level      int
		parent     string
	}
	rows := []row{
		{"1000", "Assets", model.AccountTypeAsset, 0, ""},
		{"1100", "Cash and Bank", model.AccountTypeAsset, 1, "1000"},
		{"1110", "Current Account", model.AccountTypeAsset, 2, "1100"},
		{"1120", "Petty Cash", model.AccountTypeAsset, 2, "1100"},
		{"1200", "Accounts Receivable", model.AccountTypeAsset, 1, "1000"},
		{"2000", "Liabilities", model.AccountTypeLiability, 0, ""},
		{"2100", "Accounts Payable", model.AccountTypeLiability, 1, "2000"},
		{"2200", "SST Payable", model.AccountTypeLiability, 1, "2000"},
		{"3000", "Equity", model.AccountTypeEquity, 0, ""},
		{"3100", "Share Capital", model.AccountTypeEquity, 1, "3000"},
		{"3200", "Retained Earnings", model.AccountTypeEquity, 1, "3000"},
		{"4000", "Revenue", model.AccountTypeRevenue, 0, ""},
		{"4100", "Sales", model.AccountTypeRevenue, 1, "4000"},
		{"4200", "Service Revenue", model.AccountTypeRevenue, 1, "4000"},
		{"5000", "Expenses", model.AccountTypeExpense, 0, ""},
		{"5100", "Cost of Sales", model.AccountTypeExpense, 1, "5000"},
		{"5200", "Rental", model.AccountTypeExpense, 1, "5000"},
		{"5300", "Utilities", model.AccountTypeExpense, 1, "5000"},
		{"5400", "Bank Charges", model.AccountTypeExpense, 1, "5000"},
	}

	chart := make([]model.Account, 0, len(rows))
	for _, r := range rows {
		acct := model.Account{
			ID:       DefaultID(r.code),
			Code:     r.code,
			Name:     r.name,
			Type:     r.typ,
			Currency: currency,
			IsActive: true,
			Level:    r.level,
		}
		if r.parent != "" {
			acct.ParentID = DefaultID(r.parent)
		}
		chart = append(chart, acct)
	}
	return chart
}

// DefaultID is the account id DefaultChart assigns to an account code.
func DefaultID(code string) string {
	return "coa-" + code
}
