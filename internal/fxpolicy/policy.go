package fxpolicy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/errcode"
)

// Decision is the outcome of a policy check for one currency pair.
type Decision struct {
	RequiresFXRate bool
}

// Policy decides whether converting between two currencies needs a rate.
type Policy interface {
	CheckPolicy(baseCurrency, transactionCurrency string) Decision
}

// DefaultPolicy requires a rate for every currency mismatch except pairs
// listed as exempt.
type DefaultPolicy struct {
	exempt map[string]bool
}

// NewDefaultPolicy builds a policy. Exempt pairs are "BASE/TXN", e.g. "MYR/BND".
func NewDefaultPolicy(exemptPairs ...string) (*DefaultPolicy, error) {
	p := &DefaultPolicy{exempt: make(map[string]bool, len(exemptPairs))}
	for _, pair := range exemptPairs {
		base, txn, ok := strings.Cut(pair, "/")
		if !ok || len(strings.TrimSpace(base)) != 3 || len(strings.TrimSpace(txn)) != 3 {
			return nil, fmt.Errorf("invalid exempt pair %q: want BASE/TXN", pair)
		}
		p.exempt[pairKey(base, txn)] = true
	}
	return p, nil
}

func pairKey(base, txn string) string {
	return strings.ToUpper(strings.TrimSpace(base)) + "/" + strings.ToUpper(strings.TrimSpace(txn))
}

// CheckPolicy implements Policy.
func (p *DefaultPolicy) CheckPolicy(baseCurrency, transactionCurrency string) Decision {
	if strings.EqualFold(baseCurrency, transactionCurrency) {
		return Decision{RequiresFXRate: false}
	}
	if p != nil && p.exempt[pairKey(baseCurrency, transactionCurrency)] {
		return Decision{RequiresFXRate: false}
	}
	return Decision{RequiresFXRate: true}
}

// Error is a rejected exchange rate.
type Error struct {
	Code                errcode.Code
	BaseCurrency        string
	TransactionCurrency string
	Rate                *decimal.Decimal
}

func (e *Error) Error() string {
	switch e.Code {
	case errcode.ExchangeRateRequired:
		return fmt.Sprintf("exchange rate is required to convert %s to %s", e.TransactionCurrency, e.BaseCurrency)
	default:
		rate := "<nil>"
		if e.Rate != nil {
			rate = e.Rate.String()
		}
		return fmt.Sprintf("exchange rate %s for %s to %s must be greater than 0", rate, e.TransactionCurrency, e.BaseCurrency)
	}
}

// CheckRate applies the policy to a supplied rate. It returns nil when the
// pair needs no rate or the rate is present and positive. The rate's
// magnitude is not otherwise checked.
func CheckRate(p Policy, baseCurrency, transactionCurrency string, rate *decimal.Decimal) error {
	if !p.CheckPolicy(baseCurrency, transactionCurrency).RequiresFXRate {
		return nil
	}
	if rate == nil {
		return &Error{
			Code:                errcode.ExchangeRateRequired,
			BaseCurrency:        baseCurrency,
			TransactionCurrency: transactionCurrency,
		}
	}
	if !rate.IsPositive() {
		return &Error{
			Code:                errcode.InvalidExchangeRate,
			BaseCurrency:        baseCurrency,
			TransactionCurrency: transactionCurrency,
			Rate:                rate,
		}
	}
	return nil
}
