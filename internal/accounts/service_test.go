package accounts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/glcore/internal/model"
)

func TestNewService(t *testing.T) {
	chart := DefaultChart("MYR")
	svc := NewService(chart)

	assert.Len(t, svc.All(), len(chart))
}

func TestGet(t *testing.T) {
	svc := NewService(DefaultChart("MYR"))

	acct, ok := svc.Get(DefaultID("1110"))
	assert.True(t, ok)
	assert.Equal(t, "Current Account", acct.Name)

	_, ok = svc.Get("missing")
	assert.False(t, ok)
}

func TestLookup_OmitsUnknown(t *testing.T) {
	svc := NewService(DefaultChart("MYR"))

	got, err := svc.Lookup(context.Background(), []string{DefaultID("1110"), "missing", DefaultID("2100")})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, DefaultID("1110"))
	assert.Contains(t, got, DefaultID("2100"))
	assert.NotContains(t, got, "missing")
}

func TestListAll(t *testing.T) {
	chart := DefaultChart("MYR")
	svc := NewService(chart)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chart, all)
}

func TestPostable(t *testing.T) {
	svc := NewService(DefaultChart("MYR"))

	parents := make(map[string]bool)
	for _, a := range svc.All() {
		parents[a.ParentID] = true
	}
	codes := make(map[string]bool)
	for _, a := range svc.Postable() {
		assert.NotZero(t, a.Level, "%s is level 0", a.Code)
		assert.False(t, parents[a.ID], "%s has children", a.Code)
		assert.True(t, a.IsActive)
		codes[a.Code] = true
	}
	assert.False(t, codes["1100"], "Cash and Bank has children")
	assert.True(t, codes["1110"])

	chart := DefaultChart("MYR")
	chart = append(chart, model.Account{ID: "x", Code: "9990", Type: model.AccountTypeExpense, Currency: "MYR", Level: 1})
	assert.Len(t, NewService(chart).Postable(), len(svc.Postable()), "inactive accounts are not postable")
}

func TestLoadFromTestdata(t *testing.T) {
	dir := t.TempDir()
	acctDir := filepath.Join(dir, "accounts")
	require.NoError(t, os.MkdirAll(acctDir, 0o755))

	src, err := os.ReadFile("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(acctDir, "chart-of-accounts.csv"), src, 0o644))

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 12)
	_, ok := svc.Get("coa-1110")
	assert.True(t, ok)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	chart := DefaultChart("MYR")
	svc := NewService(chart)

	dir := t.TempDir()
	require.NoError(t, svc.Save(dir))

	_, err := os.Stat(ChartPath(dir))
	require.NoError(t, err)

	svc2, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc2.All(), len(chart))

	for _, orig := range chart {
		got, ok := svc2.Get(orig.ID)
		require.True(t, ok, "account %s should exist", orig.ID)
		assert.Equal(t, orig, got)
	}
}
