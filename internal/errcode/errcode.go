// Package errcode defines the stable error codes surfaced to callers of the
// posting core. The string values are part of the external contract and are
// used for UI branching and message lookup; do not rename them.
package errcode

// Code is a closed set of error codes.
type Code string

const (
	// Payment translator.
	ExchangeRateRequired    Code = "EXCHANGE_RATE_REQUIRED"
	InvalidExchangeRate     Code = "INVALID_EXCHANGE_RATE"
	PaymentValidationFailed Code = "PAYMENT_VALIDATION_FAILED"
	JournalValidationFailed Code = "JOURNAL_VALIDATION_FAILED"
	PaymentProcessingError  Code = "PAYMENT_PROCESSING_ERROR"

	// Chart-of-accounts rules.
	AccountsNotFound        Code = "ACCOUNTS_NOT_FOUND"
	InactiveAccounts        Code = "INACTIVE_ACCOUNTS"
	CurrencyMismatch        Code = "CURRENCY_MISMATCH"
	ControlAccountViolation Code = "CONTROL_ACCOUNT_VIOLATION"

	// Journal posting validator.
	EmptyJournal          Code = "EMPTY_JOURNAL"
	NegativeAmount        Code = "NEGATIVE_AMOUNT"
	UnbalancedJournal     Code = "UNBALANCED_JOURNAL"
	InvalidPostingContext Code = "INVALID_POSTING_CONTEXT"
	PostingNotPermitted   Code = "POSTING_NOT_PERMITTED"
)

// Category groups codes by who can correct them.
type Category string

const (
	CategoryBusinessRule  Category = "business_rule"
	CategoryDataIntegrity Category = "data_integrity"
	CategoryBalance       Category = "balance"
	CategoryRuntime       Category = "runtime"
)

var categories = map[Code]Category{
	ExchangeRateRequired:    CategoryBusinessRule,
	InvalidExchangeRate:     CategoryBusinessRule,
	PaymentValidationFailed: CategoryBusinessRule,
	JournalValidationFailed: CategoryBusinessRule,
	PaymentProcessingError:  CategoryRuntime,
	AccountsNotFound:        CategoryDataIntegrity,
	InactiveAccounts:        CategoryDataIntegrity,
	CurrencyMismatch:        CategoryDataIntegrity,
	ControlAccountViolation: CategoryDataIntegrity,
	EmptyJournal:            CategoryBusinessRule,
	NegativeAmount:          CategoryBusinessRule,
	UnbalancedJournal:       CategoryBalance,
	InvalidPostingContext:   CategoryBusinessRule,
	PostingNotPermitted:     CategoryBusinessRule,
}

// Category returns the taxonomy bucket for c. Unknown codes are runtime errors.
func (c Code) Category() Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryRuntime
}

func (c Code) String() string { return string(c) }
