package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/glcore/internal/model"
)

// CSVHeader is the header of a flat payment CSV. Each row is one allocation;
// rows sharing a payment_number form one payment and must agree on the
// payment columns. party_id is the supplier for a BILL and the customer for
// an INVOICE; account_id is the AP or AR account respectively.
const CSVHeader = "payment_number,payment_date,method,bank_account_id,currency,exchange_rate,amount," +
	"tenant_id,company_id,payment_id,type,document_id,document_number,party_id,allocation_amount,account_id"

const (
	csvNumFields = 16

	csvColNumber   = 0
	csvColDate     = 1
	csvColMethod   = 2
	csvColBank     = 3
	csvColCurrency = 4
	csvColRate     = 5
	csvColAmount   = 6
	csvColTenant   = 7
	csvColCompany  = 8
	csvColID       = 9
	csvColType     = 10
	csvColDocID    = 11
	csvColDocNum   = 12
	csvColParty    = 13
	csvColAllocAmt = 14
	csvColAccount  = 15

	// Columns 0..csvColID describe the payment and must repeat identically.
	csvPaymentCols = csvColID + 1
)

// CSVParser parses flat payment CSVs.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extensions returns the file extensions handled by this parser.
func (p *CSVParser) Extensions() []string { return []string{".csv"} }

// Parse reads a payment CSV, grouping rows by payment number in
// first-appearance order.
func (p *CSVParser) Parse(r io.Reader) ([]model.PaymentProcessingInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading payments CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var payments []model.PaymentProcessingInput
	index := make(map[string]int)
	first := make(map[string][]string)
	for i, rec := range records[1:] {
		row := i + 2
		number := rec[csvColNumber]
		if number == "" {
			return nil, fmt.Errorf("row %d: payment_number is required", row)
		}

		pos, seen := index[number]
		if !seen {
			in, err := parseCSVPayment(rec)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			pos = len(payments)
			index[number] = pos
			first[number] = rec
			payments = append(payments, in)
		} else if col, ok := samePayment(first[number], rec); !ok {
			return nil, fmt.Errorf("row %d: payment %s: column %s differs from its first row",
				row, number, strings.Split(CSVHeader, ",")[col])
		}

		alloc, err := parseCSVAllocation(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		payments[pos].Allocations = append(payments[pos].Allocations, alloc)
	}
	return payments, nil
}

func samePayment(a, b []string) (int, bool) {
	for col := 0; col < csvPaymentCols; col++ {
		if strings.TrimSpace(a[col]) != strings.TrimSpace(b[col]) {
			return col, false
		}
	}
	return 0, true
}

func parseCSVPayment(rec []string) (model.PaymentProcessingInput, error) {
	date, err := parseDate(rec[csvColDate])
	if err != nil {
		return model.PaymentProcessingInput{}, err
	}
	amount, err := parseAmount("amount", rec[csvColAmount])
	if err != nil {
		return model.PaymentProcessingInput{}, err
	}
	rate, err := parseRate(rec[csvColRate])
	if err != nil {
		return model.PaymentProcessingInput{}, err
	}
	return model.PaymentProcessingInput{
		TenantID:      rec[csvColTenant],
		CompanyID:     rec[csvColCompany],
		PaymentID:     rec[csvColID],
		PaymentNumber: rec[csvColNumber],
		PaymentDate:   date,
		Method:        model.PaymentMethod(strings.ToUpper(rec[csvColMethod])),
		BankAccountID: rec[csvColBank],
		Currency:      strings.ToUpper(rec[csvColCurrency]),
		ExchangeRate:  rate,
		Amount:        amount,
	}, nil
}

func parseCSVAllocation(rec []string) (model.PaymentAllocation, error) {
	amt, err := parseAmount("allocation amount", rec[csvColAllocAmt])
	if err != nil {
		return model.PaymentAllocation{}, err
	}
	a := model.PaymentAllocation{
		Type:           model.AllocationType(strings.ToUpper(rec[csvColType])),
		DocumentID:     rec[csvColDocID],
		DocumentNumber: rec[csvColDocNum],
		Amount:         amt,
	}
	switch a.Type {
	case model.AllocationBill:
		a.SupplierID = rec[csvColParty]
		a.APAccountID = rec[csvColAccount]
	case model.AllocationInvoice:
		a.CustomerID = rec[csvColParty]
		a.ARAccountID = rec[csvColAccount]
	default:
		return model.PaymentAllocation{}, fmt.Errorf("invalid allocation type %q", rec[csvColType])
	}
	return a, nil
}
