package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/glcore/internal/coa"
	"github.com/cleared-dev/glcore/internal/errcode"
	"github.com/cleared-dev/glcore/internal/logging"
	"github.com/cleared-dev/glcore/internal/model"
)

// AccountDirectory is the read-only account lookup supplied by the
// persistence layer. Lookup omits unknown ids rather than failing.
type AccountDirectory interface {
	Lookup(ctx context.Context, ids []string) (map[string]model.Account, error)
	ListAll(ctx context.Context) ([]model.Account, error)
}

// Options configures a Validator. Zero values select defaults.
type Options struct {
	Policy PostingPolicy // default AllowAll
	// Epsilon is the balance tolerance. Nil selects model.DefaultEpsilon;
	// a zero value requires debits and credits to match exactly.
	Epsilon *decimal.Decimal
	Logger  *zap.Logger // default no-op
}

// Validator checks proposed journals before they are posted.
type Validator struct {
	accounts AccountDirectory
	engine   *coa.Engine
	policy   PostingPolicy
	epsilon  decimal.Decimal
	log      *zap.Logger
}

// NewValidator creates a Validator over an account directory.
func NewValidator(accounts AccountDirectory, opts Options) *Validator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	policy := opts.Policy
	if policy == nil {
		policy = AllowAll{}
	}
	eps := model.DefaultEpsilon
	if opts.Epsilon != nil {
		eps = *opts.Epsilon
	}
	return &Validator{
		accounts: accounts,
		engine:   coa.NewEngine(log),
		policy:   policy,
		epsilon:  eps,
		log:      log.Named("journal.validator"),
	}
}

// Result is the verdict on one journal. When Validated is false, Code and
// Message name the failed rule and Err holds the typed diagnostic
// (*LineError, *BalanceError, *PermissionError or *coa.ValidationError).
type Result struct {
	Validated     bool
	Code          errcode.Code
	Message       string
	Err           error
	JournalNumber string
	Currency      string
	TotalDebit    decimal.Decimal
	TotalCredit   decimal.Decimal
	Warnings      []coa.Warning
	Accounts      map[string]model.Account
}

// Validate runs, in order: posting-context checks, line structure, balance,
// chart-of-accounts rules and the posting policy. Rule failures come back as
// a Result with Validated=false; the error return is reserved for account
// directory failures.
func (v *Validator) Validate(ctx context.Context, in model.JournalPostingInput) (*Result, error) {
	debit, credit := model.Totals(in.Lines)
	res := &Result{
		JournalNumber: in.JournalNumber,
		Currency:      in.Currency,
		TotalDebit:    debit,
		TotalCredit:   credit,
	}

	if err := ValidateContext(in.Context); err != nil {
		return v.fail(res, errcode.InvalidPostingContext, &PermissionError{
			Code:        errcode.InvalidPostingContext,
			Context:     in.Context,
			JournalType: in.Type,
			Err:         err,
		}), nil
	}

	if err := CheckLines(in.Lines); err != nil {
		var lerr *LineError
		errors.As(err, &lerr)
		return v.fail(res, lerr.Code, err), nil
	}

	if err := CheckBalance(in.Lines, v.epsilon); err != nil {
		return v.fail(res, errcode.UnbalancedJournal, err), nil
	}

	ids := model.AccountIDs(in.Lines)
	found, err := v.accounts.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up accounts for %s: %w", in.JournalNumber, err)
	}
	all, err := v.accounts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts for %s: %w", in.JournalNumber, err)
	}

	coaRes, err := v.engine.Validate(in.Lines, in.Currency, found, all)
	if err != nil {
		var verr *coa.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		res.Accounts = found
		return v.fail(res, verr.Code, err), nil
	}

	if err := v.policy.Authorize(ctx, in.Context, in.Type); err != nil {
		return v.fail(res, errcode.PostingNotPermitted, &PermissionError{
			Code:        errcode.PostingNotPermitted,
			Context:     in.Context,
			JournalType: in.Type,
			Err:         err,
		}), nil
	}

	res.Validated = true
	res.Warnings = coaRes.Warnings
	res.Accounts = coaRes.AccountDetails
	v.log.Debug("journal validated",
		zap.String("journal_number", in.JournalNumber),
		zap.Int("lines", len(in.Lines)),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

func (v *Validator) fail(res *Result, code errcode.Code, err error) *Result {
	res.Validated = false
	res.Code = code
	res.Message = err.Error()
	res.Err = err
	v.log.Log(logging.CodeLevel(code), "journal rejected",
		zap.String("journal_number", res.JournalNumber),
		zap.String("code", string(code)),
		zap.Error(err))
	return res
}
