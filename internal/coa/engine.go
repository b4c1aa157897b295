// Package coa enforces chart-of-accounts rules on proposed posting lines.
//
// Rules run in a fixed order and stop at the first violated category:
// existence and activity, currency consistency, then control-account
// restriction. Normal-balance checks never fail; they produce warnings that
// accompany a successful result.
package coa

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/glcore/internal/errcode"
	"github.com/cleared-dev/glcore/internal/logging"
	"github.com/cleared-dev/glcore/internal/model"
)

// Warning flags a line posted against its account's normal balance.
type Warning struct {
	AccountID   string
	Message     string
	AccountType model.AccountType
	Amount      decimal.Decimal
	Side        model.Side
}

// Result is a successful validation.
type Result struct {
	Valid          bool
	Warnings       []Warning
	AccountDetails map[string]model.Account
}

// Engine applies the chart-of-accounts rules.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates an Engine. A nil logger disables logging.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log.Named("coa")}
}

// Validate checks lines against the chart using a no-op logger.
func Validate(lines []model.PostingLine, journalCurrency string, accounts map[string]model.Account, allAccounts []model.Account) (*Result, error) {
	return NewEngine(nil).Validate(lines, journalCurrency, accounts, allAccounts)
}

// Validate checks that every account referenced by lines exists, is active,
// uses journalCurrency and is not a control account. accounts maps the
// referenced ids to their metadata (absent = not found); allAccounts is the
// full chart, used to find parents. The returned error is a *ValidationError.
func (e *Engine) Validate(lines []model.PostingLine, journalCurrency string, accounts map[string]model.Account, allAccounts []model.Account) (*Result, error) {
	ids := model.AccountIDs(lines)

	if err := checkExistence(ids, accounts); err != nil {
		return nil, e.reject(err)
	}
	if err := checkCurrency(ids, journalCurrency, accounts); err != nil {
		return nil, e.reject(err)
	}
	if err := checkControl(ids, accounts, allAccounts); err != nil {
		return nil, e.reject(err)
	}

	warnings := normalBalanceWarnings(lines, accounts)
	for _, w := range warnings {
		e.log.Debug("normal balance warning",
			zap.String("account_id", w.AccountID),
			zap.String("side", string(w.Side)),
			zap.String("amount", w.Amount.StringFixed(2)))
	}

	return &Result{
		Valid:          true,
		Warnings:       warnings,
		AccountDetails: accounts,
	}, nil
}

func (e *Engine) reject(err *ValidationError) error {
	e.log.Log(logging.CodeLevel(err.Code), "chart of accounts violation",
		zap.String("code", string(err.Code)),
		zap.Strings("account_ids", err.AccountIDs()),
		zap.String("message", err.Message))
	return err
}

func checkExistence(ids []string, accounts map[string]model.Account) *ValidationError {
	var missing, labels []string
	var inactive []AccountRef
	for _, id := range ids {
		a, ok := accounts[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if !a.IsActive {
			inactive = append(inactive, AccountRef{ID: a.ID, Code: a.Code, Name: a.Name})
			labels = append(labels, a.Label())
		}
	}

	switch {
	case len(missing) > 0:
		return &ValidationError{
			Code:    errcode.AccountsNotFound,
			Message: "accounts not found: " + strings.Join(missing, ", "),
			Details: Details{Missing: missing, Inactive: inactive},
		}
	case len(inactive) > 0:
		return &ValidationError{
			Code:    errcode.InactiveAccounts,
			Message: "cannot post to inactive accounts: " + strings.Join(labels, ", "),
			Details: Details{Inactive: inactive},
		}
	}
	return nil
}

// checkCurrency compares codes exactly. Directories and callers supply
// upper-case ISO codes.
func checkCurrency(ids []string, journalCurrency string, accounts map[string]model.Account) *ValidationError {
	var mismatches []CurrencyMismatch
	var parts []string
	for _, id := range ids {
		a := accounts[id]
		if a.Currency == journalCurrency {
			continue
		}
		mismatches = append(mismatches, CurrencyMismatch{
			AccountID: a.ID,
			Currency:  a.Currency,
			Code:      a.Code,
			Name:      a.Name,
		})
		parts = append(parts, fmt.Sprintf("%s is %s", a.Label(), a.Currency))
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &ValidationError{
		Code:    errcode.CurrencyMismatch,
		Message: fmt.Sprintf("account currency does not match journal currency %s: %s", journalCurrency, strings.Join(parts, "; ")),
		Details: Details{Mismatches: mismatches},
	}
}

const (
	reasonHasChildren = "account has child accounts and is used for roll-up only"
	reasonTopLevel    = "account is a top-level (level 0) control account"
)

func checkControl(ids []string, accounts map[string]model.Account, allAccounts []model.Account) *ValidationError {
	parents := make(map[string]bool)
	for _, a := range allAccounts {
		if a.ParentID != "" && a.ParentID != a.ID {
			parents[a.ParentID] = true
		}
	}

	var violations []ControlViolation
	var parts []string
	add := func(a model.Account, reason string) {
		violations = append(violations, ControlViolation{AccountID: a.ID, Code: a.Code, Name: a.Name, Reason: reason})
		parts = append(parts, a.Label()+": "+reason)
	}
	for _, id := range ids {
		a := accounts[id]
		if parents[a.ID] {
			add(a, reasonHasChildren)
		}
		if a.Level == 0 {
			add(a, reasonTopLevel)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{
		Code:    errcode.ControlAccountViolation,
		Message: "cannot post to control accounts: " + strings.Join(parts, "; "),
		Details: Details{Violations: violations},
	}
}

func normalBalanceWarnings(lines []model.PostingLine, accounts map[string]model.Account) []Warning {
	var warnings []Warning
	for _, l := range lines {
		a := accounts[l.AccountID]
		normal, ok := a.Type.NormalBalance()
		if !ok {
			continue
		}
		against := l.Debit
		if normal == model.SideDebit {
			against = l.Credit
		}
		if against.IsZero() {
			continue
		}
		side := normal.Opposite()
		warnings = append(warnings, Warning{
			AccountID:   a.ID,
			AccountType: a.Type,
			Amount:      against,
			Side:        side,
			Message: fmt.Sprintf("%s of %s to %s account %s is against its normal %s balance",
				side, against.StringFixed(2), a.Type, a.Label(), normal),
		})
	}
	return warnings
}
