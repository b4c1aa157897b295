package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/clock"
	"github.com/cleared-dev/glcore/internal/id"
	"github.com/cleared-dev/glcore/internal/model"
)

// Summary totals a set of allocations by kind, in cents.
type Summary struct {
	BillPayments    decimal.Decimal
	InvoiceReceipts decimal.Decimal
	TotalAmount     decimal.Decimal
}

// CalculateSummary totals bill payments and invoice receipts.
// TotalAmount is the sum of the two rounded figures.
func CalculateSummary(allocs []model.PaymentAllocation) Summary {
	bills, invoices := decimal.Zero, decimal.Zero
	for _, a := range allocs {
		switch a.Type {
		case model.AllocationBill:
			bills = bills.Add(a.Amount)
		case model.AllocationInvoice:
			invoices = invoices.Add(a.Amount)
		}
	}
	bills = model.Round2(bills)
	invoices = model.Round2(invoices)
	return Summary{
		BillPayments:    bills,
		InvoiceReceipts: invoices,
		TotalAmount:     bills.Add(invoices),
	}
}

// AllocationCheck is the outcome of comparing allocations with outstanding
// document balances. Valid reflects Errors only.
type AllocationCheck struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateAllocations compares each allocation with the outstanding balance of
// its document. Allocating against a document with nothing outstanding is an
// error; over-allocating a document with a positive balance is a warning.
// Documents missing from outstanding count as fully settled.
func ValidateAllocations(allocs []model.PaymentAllocation, outstanding map[string]decimal.Decimal) AllocationCheck {
	var check AllocationCheck
	for _, a := range allocs {
		bal := outstanding[a.DocumentID]
		if !a.Amount.GreaterThan(bal) {
			continue
		}
		doc := documentLabel(a)
		if bal.IsZero() {
			check.Errors = append(check.Errors,
				fmt.Sprintf("%s has no outstanding balance", doc))
			continue
		}
		check.Warnings = append(check.Warnings,
			fmt.Sprintf("Allocation of %s to %s exceeds outstanding balance (%s)",
				a.Amount.StringFixed(2), doc, bal.StringFixed(2)))
	}
	check.Valid = len(check.Errors) == 0
	return check
}

// GeneratePaymentNumber numbers a payment in the current year of clk.
func GeneratePaymentNumber(clk clock.Clock, companyCode string, seq int, dir id.Direction) (string, error) {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return id.FormatPaymentNumber(companyCode, clk.Now().Year(), seq, dir)
}
