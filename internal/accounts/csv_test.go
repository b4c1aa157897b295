package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/glcore/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: "a-1", Code: "1000", Name: "Assets", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: true, Level: 0},
		{ID: "a-2", Code: "1110", Name: "Current Account", Type: model.AccountTypeAsset, Currency: "MYR", IsActive: false, Level: 1, ParentID: "a-1"},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, accounts, got)
}

func TestUnmarshalAccount_LowercaseTypeAndCurrency(t *testing.T) {
	acct, err := UnmarshalAccount([]string{"x", "2100", "AP", "liability", "myr", "true", "1", "p"})
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeLiability, acct.Type)
	assert.Equal(t, "MYR", acct.Currency)
	assert.Equal(t, "p", acct.ParentID)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"short row", []string{"x"}, "expected 8 fields"},
		{"empty id", []string{"", "1", "n", "ASSET", "MYR", "true", "0", ""}, "empty account_id"},
		{"bad type", []string{"x", "1", "n", "INCOME", "MYR", "true", "0", ""}, "unknown account type"},
		{"bad active", []string{"x", "1", "n", "ASSET", "MYR", "yes please", "0", ""}, "parsing active"},
		{"bad level", []string{"x", "1", "n", "ASSET", "MYR", "true", "top", ""}, "parsing level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadAccounts_ReportsRow(t *testing.T) {
	data := Header + "\n" + "x,1,n,ASSET,MYR,true,0,\n" + "y,2,n,NOPE,MYR,true,0,\n"
	_, err := ReadAccounts(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("MYR")
	require.NotEmpty(t, chart)

	ids := make(map[string]model.Account)
	for _, acct := range chart {
		ids[acct.ID] = acct
	}
	assert.Contains(t, ids, DefaultID("1110"), "expected Current Account")
	assert.Contains(t, ids, DefaultID("2100"), "expected Accounts Payable")

	for _, acct := range chart {
		assert.NotEmpty(t, acct.Name, "account %s missing name", acct.ID)
		assert.Equal(t, "MYR", acct.Currency)
		assert.True(t, acct.IsActive)
		if acct.ParentID != "" {
			assert.Contains(t, ids, acct.ParentID, "account %s has dangling parent", acct.ID)
		} else {
			assert.Equal(t, 0, acct.Level, "root %s should be level 0", acct.ID)
		}
	}
}

func TestDefaultChart_Currency(t *testing.T) {
	for _, acct := range DefaultChart("SGD") {
		assert.Equal(t, "SGD", acct.Currency)
	}
	assert.Equal(t, "MYR", DefaultChart("")[0].Currency)
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 12)

	types := make(map[model.AccountType]bool)
	for _, acct := range accounts {
		types[acct.Type] = true
	}
	for _, at := range model.AccountTypes {
		assert.True(t, types[at], "missing type %s", at)
	}
}
