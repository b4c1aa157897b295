package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/glcore/internal/model"
)

func TestValidateContext(t *testing.T) {
	full := model.PostingContext{TenantID: "t", CompanyID: "c", UserID: "u", UserRole: "ACCOUNTANT"}
	assert.NoError(t, ValidateContext(full))

	tests := []struct {
		name string
		edit func(*model.PostingContext)
		want error
	}{
		{"no tenant", func(pc *model.PostingContext) { pc.TenantID = "" }, ErrInvalidTenant},
		{"no company", func(pc *model.PostingContext) { pc.CompanyID = " " }, ErrInvalidCompany},
		{"no user", func(pc *model.PostingContext) { pc.UserID = "" }, ErrInvalidUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := full
			tt.edit(&pc)
			assert.ErrorIs(t, ValidateContext(pc), tt.want)
		})
	}
}

func TestRolePolicy(t *testing.T) {
	p := NewRolePolicy(map[model.JournalType][]string{
		model.JournalTypePayment: {"Accountant", "OWNER"},
		model.JournalTypeManual:  {"OWNER"},
	})
	ctx := context.Background()
	pc := func(role string) model.PostingContext {
		return model.PostingContext{TenantID: "t", CompanyID: "c", UserID: "u", UserRole: role}
	}

	assert.NoError(t, p.Authorize(ctx, pc("ACCOUNTANT"), model.JournalTypePayment))
	assert.NoError(t, p.Authorize(ctx, pc("accountant"), model.JournalTypePayment))
	assert.NoError(t, p.Authorize(ctx, pc("OWNER"), model.JournalTypeManual))

	assert.ErrorIs(t, p.Authorize(ctx, pc("ACCOUNTANT"), model.JournalTypeManual), ErrForbidden)
	assert.ErrorIs(t, p.Authorize(ctx, pc("VIEWER"), model.JournalTypePayment), ErrForbidden)
	assert.ErrorIs(t, p.Authorize(ctx, pc(""), model.JournalTypePayment), ErrForbidden)
	assert.ErrorIs(t, p.Authorize(ctx, pc("OWNER"), model.JournalType("ADJUSTMENT")), ErrForbidden)
}

func TestAllowAll(t *testing.T) {
	assert.NoError(t, AllowAll{}.Authorize(context.Background(), model.PostingContext{}, model.JournalTypeManual))
}
