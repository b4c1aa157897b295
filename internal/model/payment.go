package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationType says whether an allocation settles a bill (AP) or an invoice (AR).
type AllocationType string

const (
	AllocationBill    AllocationType = "BILL"
	AllocationInvoice AllocationType = "INVOICE"
)

// PaymentMethod is how money moved.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCheck        PaymentMethod = "CHECK"
	MethodCash         PaymentMethod = "CASH"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodDebitCard    PaymentMethod = "DEBIT_CARD"
	MethodOther        PaymentMethod = "OTHER"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{
	MethodBankTransfer,
	MethodCheck,
	MethodCash,
	MethodCreditCard,
	MethodDebitCard,
	MethodOther,
}

// Valid reports whether m is one of PaymentMethods.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentAllocation links part of a payment to one outstanding bill or invoice.
type PaymentAllocation struct {
	Type           AllocationType
	DocumentID     string
	DocumentNumber string
	SupplierID     string // BILL only
	CustomerID     string // INVOICE only
	Amount         decimal.Decimal
	APAccountID    string // BILL only
	ARAccountID    string // INVOICE only
}

// PaymentProcessingInput is one payment or receipt event.
type PaymentProcessingInput struct {
	TenantID      string
	CompanyID     string
	PaymentID     string
	PaymentNumber string
	PaymentDate   time.Time
	Method        PaymentMethod
	BankAccountID string
	Currency      string
	ExchangeRate  *decimal.Decimal // nil = not supplied
	Amount        decimal.Decimal
	Allocations   []PaymentAllocation
}
