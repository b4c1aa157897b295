package coa

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cleared-dev/glcore/internal/errcode"
	"github.com/cleared-dev/glcore/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testChart is a small two-level chart: 1000 and 2000 are roots, 1100 has a child.
func testChart() []model.Account {
	return []model.Account{
		{ID: "1000", Code: "1000", Name: "Assets", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: true, Level: 0},
		{ID: "1100", Code: "1100", Name: "Cash and Bank", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: true, Level: 1, ParentID: "1000"},
		{ID: "1110", Code: "1110", Name: "Current Account", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: true, Level: 2, ParentID: "1100"},
		{ID: "1120", Code: "1120", Name: "USD Account", Type: model.AccountTypeAsset, Currency: "USD", IsActive: true, Level: 1, ParentID: "1000"},
		{ID: "1130", Code: "1130", Name: "Old Account", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: false, Level: 1, ParentID: "1000"},
		{ID: "2000", Code: "2000", Name: "Liabilities", Type: model.AccountTypeLiability, Currency: "MYR", IsActive: true, Level: 0},
		{ID: "2100", Code: "2100", Name: "Accounts Payable", Type: model.AccountTypeLiability, Currency: "MYR", IsActive: true, Level: 1, ParentID: "2000"},
		{ID: "4100", Code: "4100", Name: "Sales", Type: model.AccountTypeRevenue, Currency: "MYR", IsActive: true, Level: 1, ParentID: "4000"},
		{ID: "5200", Code: "5200", Name: "Rental", Type: model.AccountTypeExpense, Currency: "MYR", IsActive: true, Level: 1, ParentID: "5000"},
	}
}

// lookup mirrors the account directory contract: unknown ids are absent.
func lookup(chart []model.Account, lines []model.PostingLine) map[string]model.Account {
	byID := make(map[string]model.Account)
	for _, a := range chart {
		byID[a.ID] = a
	}
	found := make(map[string]model.Account)
	for _, id := range model.AccountIDs(lines) {
		if a, ok := byID[id]; ok {
			found[id] = a
		}
	}
	return found
}

func validate(t *testing.T, lines []model.PostingLine, currency string) (*Result, error) {
	t.Helper()
	chart := testChart()
	return Validate(lines, currency, lookup(chart, lines), chart)
}

func requireCode(t *testing.T, err error, code errcode.Code) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	require.Equal(t, code, verr.Code)
	return verr
}

func TestValidate_Valid(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("100.00")},
		{AccountID: "1110", Credit: dec("100.00")},
	}
	res, err := validate(t, lines, "MYR")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Len(t, res.AccountDetails, 2)

	// Paying out of the bank credits an asset: allowed, but flagged.
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, "1110", w.AccountID)
	assert.Equal(t, model.SideCredit, w.Side)
	assert.Equal(t, model.AccountTypeAsset, w.AccountType)
	assert.True(t, w.Amount.Equal(dec("100")))
	assert.Equal(t, "credit of 100.00 to ASSET account 1110 (Current Account) is against its normal debit balance", w.Message)
}

func TestValidate_AccountsNotFound(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "9999", Debit: dec("10")},
		{AccountID: "1130", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	verr := requireCode(t, err, errcode.AccountsNotFound)
	assert.Equal(t, []string{"9999"}, verr.Details.Missing)
	// Inactive ids are gathered in the same pass and reported alongside.
	require.Len(t, verr.Details.Inactive, 1)
	assert.Equal(t, "1130", verr.Details.Inactive[0].ID)
	assert.Contains(t, err.Error(), "9999")
}

func TestValidate_InactiveAccounts(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1130", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	verr := requireCode(t, err, errcode.InactiveAccounts)
	require.Len(t, verr.Details.Inactive, 1)
	assert.Equal(t, AccountRef{ID: "1130", Code: "1130", Name: "Old Account"}, verr.Details.Inactive[0])
}

func TestValidate_CurrencyMismatch(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1120", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	verr := requireCode(t, err, errcode.CurrencyMismatch)
	require.Len(t, verr.Details.Mismatches, 1)
	assert.Equal(t, CurrencyMismatch{AccountID: "1120", Currency: "USD", Code: "1120", Name: "USD Account"}, verr.Details.Mismatches[0])
}

func TestValidate_CurrencyComparedExactly(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1110", Credit: dec("10")},
	}
	_, err := validate(t, lines, "myr")
	verr := requireCode(t, err, errcode.CurrencyMismatch)
	assert.Len(t, verr.Details.Mismatches, 2)
	assert.Contains(t, verr.Message, "1110 (Current Account) is MYR")
}

func TestValidate_CurrencyMismatchReportsAll(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1110", Credit: dec("10")},
	}
	_, err := validate(t, lines, "SGD")
	verr := requireCode(t, err, errcode.CurrencyMismatch)
	assert.Len(t, verr.Details.Mismatches, 2)
}

func TestValidate_ControlAccountLevelZero(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "2000", Debit: dec("10")},
		{AccountID: "1110", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	verr := requireCode(t, err, errcode.ControlAccountViolation)

	// 2000 is also the parent of 2100, so both reasons apply in rule order.
	require.Len(t, verr.Details.Violations, 2)
	assert.Equal(t, ControlViolation{AccountID: "2000", Code: "2000", Name: "Liabilities", Reason: reasonHasChildren}, verr.Details.Violations[0])
	assert.Equal(t, ControlViolation{AccountID: "2000", Code: "2000", Name: "Liabilities", Reason: reasonTopLevel}, verr.Details.Violations[1])
	assert.Contains(t, verr.Message, "2000 (Liabilities): "+reasonTopLevel)
}

func TestValidate_ControlAccountWithChildren(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1100", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	verr := requireCode(t, err, errcode.ControlAccountViolation)
	require.Len(t, verr.Details.Violations, 1)
	assert.Equal(t, reasonHasChildren, verr.Details.Violations[0].Reason)
}

func TestValidate_ControlAccountBothReasons(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1000", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	verr := requireCode(t, err, errcode.ControlAccountViolation)
	require.Len(t, verr.Details.Violations, 2)
	reasons := []string{verr.Details.Violations[0].Reason, verr.Details.Violations[1].Reason}
	assert.ElementsMatch(t, []string{reasonHasChildren, reasonTopLevel}, reasons)
}

func TestValidate_LevelZeroLeafStillBarred(t *testing.T) {
	chart := []model.Account{
		{ID: "9000", Code: "9000", Name: "Suspense", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: true, Level: 0},
		{ID: "5200", Code: "5200", Name: "Rental", Type: model.AccountTypeExpense, Currency: "MYR", IsActive: true, Level: 1},
	}
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "9000", Credit: dec("10")},
	}
	_, err := Validate(lines, "MYR", lookup(chart, lines), chart)
	verr := requireCode(t, err, errcode.ControlAccountViolation)
	require.Len(t, verr.Details.Violations, 1)
	assert.Equal(t, "9000", verr.Details.Violations[0].AccountID)
	assert.Equal(t, reasonTopLevel, verr.Details.Violations[0].Reason)
}

func TestValidate_SelfParentIsNotChild(t *testing.T) {
	chart := []model.Account{
		{ID: "5200", Code: "5200", Name: "Rental", Type: model.AccountTypeExpense, Currency: "MYR", IsActive: true, Level: 1, ParentID: "5200"},
		{ID: "1110", Code: "1110", Name: "Current", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: true, Level: 1},
	}
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1110", Credit: dec("10")},
	}
	_, err := Validate(lines, "MYR", lookup(chart, lines), chart)
	assert.NoError(t, err)
}

func TestValidate_RuleOrder(t *testing.T) {
	// 9999 missing, 1120 wrong currency, 2000 control: existence wins.
	lines := []model.PostingLine{
		{AccountID: "9999", Debit: dec("10")},
		{AccountID: "1120", Debit: dec("10")},
		{AccountID: "2000", Credit: dec("20")},
	}
	_, err := validate(t, lines, "MYR")
	requireCode(t, err, errcode.AccountsNotFound)

	// Without the missing account, currency wins over control.
	_, err = validate(t, lines[1:], "MYR")
	requireCode(t, err, errcode.CurrencyMismatch)
}

func TestValidate_NormalBalanceWarnings(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "2100", Debit: dec("300.00")},  // liability debited: warn
		{AccountID: "4100", Debit: dec("50.00")},   // revenue debited: warn
		{AccountID: "1110", Credit: dec("350.00")}, // asset credited: warn
		{AccountID: "5200", Debit: dec("0")},       // zero amount: no warning
	}
	res, err := validate(t, lines, "MYR")
	require.NoError(t, err)
	require.Len(t, res.Warnings, 3)

	w := res.Warnings[0]
	assert.Equal(t, "2100", w.AccountID)
	assert.Equal(t, model.AccountTypeLiability, w.AccountType)
	assert.Equal(t, model.SideDebit, w.Side)
	assert.True(t, w.Amount.Equal(dec("300")))
	assert.Contains(t, w.Message, "normal credit balance")

	assert.Equal(t, model.SideDebit, res.Warnings[1].Side)
	assert.Equal(t, model.SideCredit, res.Warnings[2].Side)
	assert.Contains(t, res.Warnings[2].Message, "normal debit balance")
}

func TestValidate_NoLines(t *testing.T) {
	res, err := validate(t, nil, "MYR")
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestEngine_LogsViolations(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	engine := NewEngine(zap.New(core))

	chart := testChart()
	lines := []model.PostingLine{
		{AccountID: "9999", Debit: dec("10")},
		{AccountID: "1110", Credit: dec("10")},
	}
	_, err := engine.Validate(lines, "MYR", lookup(chart, lines), chart)
	require.Error(t, err)

	entries := logs.FilterMessage("chart of accounts violation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ACCOUNTS_NOT_FOUND", fields["code"])
	assert.Equal(t, "coa", entries[0].LoggerName)
}

func TestEngine_InactiveMessageUsesLabels(t *testing.T) {
	lines := []model.PostingLine{
		{AccountID: "5200", Debit: dec("10")},
		{AccountID: "1130", Credit: dec("10")},
	}
	_, err := validate(t, lines, "MYR")
	require.Error(t, err)
	assert.Equal(t, "INACTIVE_ACCOUNTS: cannot post to inactive accounts: 1130 (Old Account)", err.Error())
}
