// Package payment translates payment and receipt events into balanced
// double-entry journals and validates them before posting.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/glcore/internal/clock"
	"github.com/cleared-dev/glcore/internal/coa"
	"github.com/cleared-dev/glcore/internal/errcode"
	"github.com/cleared-dev/glcore/internal/fxpolicy"
	"github.com/cleared-dev/glcore/internal/id"
	"github.com/cleared-dev/glcore/internal/journal"
	"github.com/cleared-dev/glcore/internal/logging"
	"github.com/cleared-dev/glcore/internal/model"
)

// DefaultBaseCurrency is used when neither the call nor the translator names one.
const DefaultBaseCurrency = "MYR"

// Error is a rejected payment. Errors lists every business-rule violation
// for PAYMENT_VALIDATION_FAILED; Journal carries the validator verdict for
// JOURNAL_VALIDATION_FAILED.
type Error struct {
	Code    errcode.Code
	Message string
	RunID   string
	Errors  []string
	Journal *journal.Result
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is a payment whose journal passed validation. JournalID stays empty
// until the journal is actually posted downstream.
type Result struct {
	Success              bool
	RunID                string
	JournalID            string
	JournalNumber        string
	TotalAmount          decimal.Decimal
	AllocationsProcessed int
	Lines                []model.PostingLine
	Warnings             []coa.Warning
}

// Options configures a Translator. Zero values select defaults.
type Options struct {
	Policy            fxpolicy.Policy // default: rate required for every mismatch
	Clock             clock.Clock     // default SystemClock
	BaseCurrency      string          // default MYR
	AllocationEpsilon *decimal.Decimal // nil selects model.DefaultEpsilon; zero is exact
	Logger            *zap.Logger
}

// Translator turns payment events into validated journals.
type Translator struct {
	validator    *journal.Validator
	policy       fxpolicy.Policy
	clock        clock.Clock
	baseCurrency string
	epsilon      decimal.Decimal
	log          *zap.Logger
}

// NewTranslator creates a Translator that delegates journal checks to v.
func NewTranslator(v *journal.Validator, opts Options) *Translator {
	t := &Translator{
		validator:    v,
		policy:       opts.Policy,
		clock:        opts.Clock,
		baseCurrency: strings.ToUpper(opts.BaseCurrency),
		epsilon:      model.DefaultEpsilon,
		log:          opts.Logger,
	}
	if t.policy == nil {
		t.policy = &fxpolicy.DefaultPolicy{}
	}
	if t.clock == nil {
		t.clock = clock.SystemClock{}
	}
	if t.baseCurrency == "" {
		t.baseCurrency = DefaultBaseCurrency
	}
	if opts.AllocationEpsilon != nil {
		t.epsilon = *opts.AllocationEpsilon
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	t.log = t.log.Named("payment.translator")
	return t
}

// Process validates a payment event and builds its journal. Steps run in
// order and stop at the first failure: FX gate, business rules, line
// construction, journal validation. baseCurrency overrides the translator's
// default when non-empty. Every failure is returned as a *Error; panics are
// recovered as PAYMENT_PROCESSING_ERROR.
func (t *Translator) Process(ctx context.Context, in model.PaymentProcessingInput, userID, userRole, baseCurrency string) (res *Result, err error) {
	runID := uuid.NewString()
	base := strings.ToUpper(baseCurrency)
	if base == "" {
		base = t.baseCurrency
	}
	log := t.log.With(
		zap.String("run_id", runID),
		zap.String("payment_number", in.PaymentNumber))

	defer func() {
		if r := recover(); r != nil {
			log.Error("payment processing panicked", zap.Any("panic", r))
			res = nil
			err = &Error{
				Code:    errcode.PaymentProcessingError,
				Message: fmt.Sprint(r),
				RunID:   runID,
			}
		}
	}()

	if currency := strings.ToUpper(in.Currency); currency != base {
		if ferr := fxpolicy.CheckRate(t.policy, base, currency, in.ExchangeRate); ferr != nil {
			code := errcode.InvalidExchangeRate
			var fe *fxpolicy.Error
			if errors.As(ferr, &fe) {
				code = fe.Code
			}
			return nil, t.reject(log, &Error{Code: code, Message: ferr.Error(), RunID: runID, Err: ferr})
		}
	}

	rules := ValidateBusinessRules(in, t.clock.Now(), t.epsilon)
	if !rules.Valid {
		return nil, t.reject(log, &Error{
			Code:    errcode.PaymentValidationFailed,
			Message: strings.Join(rules.Errors, "; "),
			RunID:   runID,
			Errors:  rules.Errors,
		})
	}

	rate := EffectiveRate(in.ExchangeRate)
	lines := BuildLines(in, rate)

	journalNumber := id.JournalNumber(in.PaymentNumber)
	jres, verr := t.validator.Validate(ctx, model.JournalPostingInput{
		Context: model.PostingContext{
			TenantID:  in.TenantID,
			CompanyID: in.CompanyID,
			UserID:    userID,
			UserRole:  userRole,
		},
		Type:          model.JournalTypePayment,
		JournalNumber: journalNumber,
		Description:   "Payment " + in.PaymentNumber,
		JournalDate:   in.PaymentDate,
		Currency:      base,
		Lines:         lines,
	})
	if verr != nil {
		log.Error("journal validation failed to run", zap.Error(verr))
		return nil, &Error{
			Code:    errcode.PaymentProcessingError,
			Message: verr.Error(),
			RunID:   runID,
			Err:     verr,
		}
	}
	if !jres.Validated {
		return nil, t.reject(log, &Error{
			Code:    errcode.JournalValidationFailed,
			Message: jres.Message,
			RunID:   runID,
			Journal: jres,
			Err:     jres.Err,
		})
	}

	log.Info("payment journal validated",
		zap.String("journal_number", journalNumber),
		zap.Int("lines", len(lines)),
		zap.Int("warnings", len(jres.Warnings)))

	return &Result{
		Success:              true,
		RunID:                runID,
		JournalNumber:        journalNumber,
		TotalAmount:          model.Round2(in.Amount.Mul(rate)),
		AllocationsProcessed: len(in.Allocations),
		Lines:                lines,
		Warnings:             jres.Warnings,
	}, nil
}

func (t *Translator) reject(log *zap.Logger, e *Error) *Error {
	log.Log(logging.CodeLevel(e.Code), "payment rejected",
		zap.String("code", string(e.Code)),
		zap.String("message", e.Message))
	return e
}

// EffectiveRate returns the supplied rate, or 1 when none was given.
func EffectiveRate(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.NewFromInt(1)
	}
	return *rate
}
