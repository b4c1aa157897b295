package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/model"
)

// RuleResult lists every business-rule violation found in a payment.
type RuleResult struct {
	Valid  bool
	Errors []string
}

// ValidateBusinessRules checks a payment event against the business rules and
// collects all violations. now is the validation time used for the
// future-date check; eps is the allocation tolerance, zero meaning exact.
func ValidateBusinessRules(in model.PaymentProcessingInput, now time.Time, eps decimal.Decimal) RuleResult {
	var errs []string

	if in.PaymentDate.After(now) {
		errs = append(errs, "Payment date cannot be in the future")
	}
	if len(in.Currency) != 3 {
		errs = append(errs, fmt.Sprintf("Currency must be a 3-letter code, got %q", in.Currency))
	}
	if in.ExchangeRate != nil && !in.ExchangeRate.IsPositive() {
		errs = append(errs, "Exchange rate must be greater than 0")
	}
	if !in.Method.Valid() {
		errs = append(errs, fmt.Sprintf("Invalid payment method: %q", string(in.Method)))
	}
	if len(in.Allocations) == 0 {
		errs = append(errs, "Payment must have at least one allocation")
	}

	allocated := decimal.Zero
	for _, a := range in.Allocations {
		allocated = allocated.Add(a.Amount)
	}
	if !model.WithinEpsilon(allocated, in.Amount, eps) {
		errs = append(errs, fmt.Sprintf("Total allocated amount (%s) does not match payment amount (%s)",
			allocated.StringFixed(2), in.Amount.StringFixed(2)))
	}

	for i, a := range in.Allocations {
		errs = append(errs, allocationErrors(i+1, a)...)
	}

	return RuleResult{Valid: len(errs) == 0, Errors: errs}
}

func allocationErrors(n int, a model.PaymentAllocation) []string {
	prefix := fmt.Sprintf("Allocation %d", n)
	if doc := documentLabel(a); doc != "" {
		prefix += " (" + doc + ")"
	}

	var errs []string
	if !a.Amount.IsPositive() {
		errs = append(errs, prefix+": allocated amount must be greater than 0")
	}
	switch a.Type {
	case model.AllocationBill:
		if a.APAccountID == "" {
			errs = append(errs, prefix+": AP account is required for bill payments")
		}
		if a.SupplierID == "" {
			errs = append(errs, prefix+": supplier is required for bill payments")
		}
	case model.AllocationInvoice:
		if a.ARAccountID == "" {
			errs = append(errs, prefix+": AR account is required for invoice receipts")
		}
		if a.CustomerID == "" {
			errs = append(errs, prefix+": customer is required for invoice receipts")
		}
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid allocation type %q", prefix, string(a.Type)))
	}
	return errs
}

func documentLabel(a model.PaymentAllocation) string {
	if a.DocumentNumber != "" {
		return a.DocumentNumber
	}
	return a.DocumentID
}
