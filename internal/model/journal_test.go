package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotals(t *testing.T) {
	lines := []PostingLine{
		{AccountID: "A", Debit: dec("60.00")},
		{AccountID: "B", Debit: dec("40.00")},
		{AccountID: "C", Credit: dec("100.00")},
	}
	debit, credit := Totals(lines)
	assert.True(t, debit.Equal(dec("100")))
	assert.True(t, credit.Equal(dec("100")))

	debit, credit = Totals(nil)
	assert.True(t, debit.IsZero())
	assert.True(t, credit.IsZero())
}

func TestAccountIDs(t *testing.T) {
	lines := []PostingLine{
		{AccountID: "B"},
		{AccountID: "A"},
		{AccountID: "B"},
		{AccountID: "C"},
	}
	assert.Equal(t, []string{"B", "A", "C"}, AccountIDs(lines))
	assert.Empty(t, AccountIDs(nil))
}

func TestNormalBalance(t *testing.T) {
	tests := []struct {
		typ  AccountType
		want Side
	}{
		{AccountTypeAsset, SideDebit},
		{AccountTypeExpense, SideDebit},
		{AccountTypeLiability, SideCredit},
		{AccountTypeEquity, SideCredit},
		{AccountTypeRevenue, SideCredit},
	}
	for _, tt := range tests {
		got, ok := tt.typ.NormalBalance()
		assert.True(t, ok, "type %s", tt.typ)
		assert.Equal(t, tt.want, got, "type %s", tt.typ)
	}

	_, ok := AccountType("BOGUS").NormalBalance()
	assert.False(t, ok)
}

func TestParseAccountType(t *testing.T) {
	got, ok := ParseAccountType("asset")
	assert.True(t, ok)
	assert.Equal(t, AccountTypeAsset, got)

	got, ok = ParseAccountType(" Revenue ")
	assert.True(t, ok)
	assert.Equal(t, AccountTypeRevenue, got)

	_, ok = ParseAccountType("income")
	assert.False(t, ok)
}

func TestWithinEpsilon(t *testing.T) {
	eps := DefaultEpsilon
	assert.True(t, WithinEpsilon(dec("100.00"), dec("100.00"), eps))
	assert.True(t, WithinEpsilon(dec("100.01"), dec("100.00"), eps))
	assert.True(t, WithinEpsilon(dec("100.00"), dec("100.01"), eps))
	assert.False(t, WithinEpsilon(dec("100.011"), dec("100.00"), eps))
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, m.Valid(), "method %s", m)
	}
	assert.False(t, PaymentMethod("WIRE").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideCredit, SideDebit.Opposite())
	assert.Equal(t, SideDebit, SideCredit.Opposite())
}
