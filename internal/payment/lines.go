package payment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/model"
)

// BuildLines turns a payment's allocations into base-currency journal lines.
// Bills produce one AP debit per allocation followed by an aggregate bank
// credit; invoices produce an aggregate bank debit followed by one AR credit
// per allocation. Each converted amount is rounded to cents and the bank
// lines carry the sum of the rounded amounts, so the result always balances.
func BuildLines(in model.PaymentProcessingInput, rate decimal.Decimal) []model.PostingLine {
	var bills, invoices []model.PaymentAllocation
	for _, a := range in.Allocations {
		switch a.Type {
		case model.AllocationBill:
			bills = append(bills, a)
		case model.AllocationInvoice:
			invoices = append(invoices, a)
		}
	}

	var lines []model.PostingLine
	if len(bills) > 0 {
		total := decimal.Zero
		for _, a := range bills {
			amt := model.Round2(a.Amount.Mul(rate))
			total = total.Add(amt)
			lines = append(lines, model.PostingLine{
				AccountID:   a.APAccountID,
				Debit:       amt,
				Description: fmt.Sprintf("Payment %s for bill %s", in.PaymentNumber, documentLabel(a)),
				Reference:   in.PaymentNumber,
			})
		}
		lines = append(lines, model.PostingLine{
			AccountID:   in.BankAccountID,
			Credit:      total,
			Description: fmt.Sprintf("Payment %s from bank for bills %s", in.PaymentNumber, documentList(bills)),
			Reference:   in.PaymentNumber,
		})
	}

	if len(invoices) > 0 {
		var arLines []model.PostingLine
		total := decimal.Zero
		for _, a := range invoices {
			amt := model.Round2(a.Amount.Mul(rate))
			total = total.Add(amt)
			arLines = append(arLines, model.PostingLine{
				AccountID:   a.ARAccountID,
				Credit:      amt,
				Description: fmt.Sprintf("Receipt %s for invoice %s", in.PaymentNumber, documentLabel(a)),
				Reference:   in.PaymentNumber,
			})
		}
		lines = append(lines, model.PostingLine{
			AccountID:   in.BankAccountID,
			Debit:       total,
			Description: fmt.Sprintf("Receipt %s to bank for invoices %s", in.PaymentNumber, documentList(invoices)),
			Reference:   in.PaymentNumber,
		})
		lines = append(lines, arLines...)
	}
	return lines
}

func documentList(allocs []model.PaymentAllocation) string {
	docs := make([]string, len(allocs))
	for i, a := range allocs {
		docs[i] = documentLabel(a)
	}
	return strings.Join(docs, ", ")
}
