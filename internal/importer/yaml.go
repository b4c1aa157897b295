package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/glcore/internal/model"
)

// YAMLParser reads payment documents of the form:
//
//	payments:
//	  - payment_number: PAY-ACME-2025-000001
//	    payment_date: 2025-06-15
//	    ...
//	    allocations:
//	      - type: BILL
//	        amount: 500.00
type YAMLParser struct{}

type yamlFile struct {
	Payments []yamlPayment `yaml:"payments"`
}

type yamlPayment struct {
	TenantID      string           `yaml:"tenant_id"`
	CompanyID     string           `yaml:"company_id"`
	PaymentID     string           `yaml:"payment_id"`
	PaymentNumber string           `yaml:"payment_number"`
	PaymentDate   string           `yaml:"payment_date"`
	Method        string           `yaml:"method"`
	BankAccountID string           `yaml:"bank_account_id"`
	Currency      string           `yaml:"currency"`
	ExchangeRate  string           `yaml:"exchange_rate,omitempty"`
	Amount        string           `yaml:"amount"`
	Allocations   []yamlAllocation `yaml:"allocations"`
}

type yamlAllocation struct {
	Type           string `yaml:"type"`
	DocumentID     string `yaml:"document_id"`
	DocumentNumber string `yaml:"document_number,omitempty"`
	SupplierID     string `yaml:"supplier_id,omitempty"`
	CustomerID     string `yaml:"customer_id,omitempty"`
	Amount         string `yaml:"amount"`
	APAccountID    string `yaml:"ap_account_id,omitempty"`
	ARAccountID    string `yaml:"ar_account_id,omitempty"`
}

// Format returns the parser name.
func (p *YAMLParser) Format() string { return "yaml" }

// Extensions returns the file extensions handled by this parser.
func (p *YAMLParser) Extensions() []string { return []string{".yaml", ".yml"} }

// Parse reads a YAML payment document.
func (p *YAMLParser) Parse(r io.Reader) ([]model.PaymentProcessingInput, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding payments YAML: %w", err)
	}

	var payments []model.PaymentProcessingInput
	for i, yp := range doc.Payments {
		in, err := yp.toInput()
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", i+1, err)
		}
		payments = append(payments, in)
	}
	return payments, nil
}

func (yp yamlPayment) toInput() (model.PaymentProcessingInput, error) {
	date, err := parseDate(yp.PaymentDate)
	if err != nil {
		return model.PaymentProcessingInput{}, err
	}
	amount, err := parseAmount("amount", yp.Amount)
	if err != nil {
		return model.PaymentProcessingInput{}, err
	}
	rate, err := parseRate(yp.ExchangeRate)
	if err != nil {
		return model.PaymentProcessingInput{}, err
	}

	in := model.PaymentProcessingInput{
		TenantID:      yp.TenantID,
		CompanyID:     yp.CompanyID,
		PaymentID:     yp.PaymentID,
		PaymentNumber: yp.PaymentNumber,
		PaymentDate:   date,
		Method:        model.PaymentMethod(strings.ToUpper(yp.Method)),
		BankAccountID: yp.BankAccountID,
		Currency:      strings.ToUpper(yp.Currency),
		ExchangeRate:  rate,
		Amount:        amount,
	}
	for j, ya := range yp.Allocations {
		amt, err := parseAmount("allocation amount", ya.Amount)
		if err != nil {
			return model.PaymentProcessingInput{}, fmt.Errorf("allocation %d: %w", j+1, err)
		}
		in.Allocations = append(in.Allocations, model.PaymentAllocation{
			Type:           model.AllocationType(strings.ToUpper(ya.Type)),
			DocumentID:     ya.DocumentID,
			DocumentNumber: ya.DocumentNumber,
			SupplierID:     ya.SupplierID,
			CustomerID:     ya.CustomerID,
			Amount:         amt,
			APAccountID:    ya.APAccountID,
			ARAccountID:    ya.ARAccountID,
		})
	}
	return in, nil
}

// MarshalPayments renders payments in the YAMLParser format.
func MarshalPayments(payments []model.PaymentProcessingInput) ([]byte, error) {
	doc := yamlFile{Payments: make([]yamlPayment, 0, len(payments))}
	for _, in := range payments {
		yp := yamlPayment{
			TenantID:      in.TenantID,
			CompanyID:     in.CompanyID,
			PaymentID:     in.PaymentID,
			PaymentNumber: in.PaymentNumber,
			PaymentDate:   in.PaymentDate.Format(DateLayout),
			Method:        string(in.Method),
			BankAccountID: in.BankAccountID,
			Currency:      in.Currency,
			Amount:        in.Amount.StringFixed(2),
		}
		if in.ExchangeRate != nil {
			yp.ExchangeRate = in.ExchangeRate.String()
		}
		for _, a := range in.Allocations {
			yp.Allocations = append(yp.Allocations, yamlAllocation{
				Type:           string(a.Type),
				DocumentID:     a.DocumentID,
				DocumentNumber: a.DocumentNumber,
				SupplierID:     a.SupplierID,
				CustomerID:     a.CustomerID,
				Amount:         a.Amount.StringFixed(2),
				APAccountID:    a.APAccountID,
				ARAccountID:    a.ARAccountID,
			})
		}
		doc.Payments = append(doc.Payments, yp)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling payments: %w", err)
	}
	return data, nil
}
