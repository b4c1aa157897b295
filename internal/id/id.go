package id

import (
	"fmt"
	"strings"
)

// Direction says whether a payment leaves or enters the company.
type Direction string

const (
	DirectionOut Direction = "OUT"
	DirectionIn  Direction = "IN"
)

const (
	prefixPayment = "PAY"
	prefixReceipt = "REC"

	// JournalPrefix is prepended to a payment number to form its journal number.
	JournalPrefix = "PAY-"
)

// Prefix returns "PAY" for outgoing payments and "REC" for receipts.
func (d Direction) Prefix() (string, error) {
	switch d {
	case DirectionOut:
		return prefixPayment, nil
	case DirectionIn:
		return prefixReceipt, nil
	}
	return "", fmt.Errorf("invalid payment direction %q", string(d))
}

// ParseDirection accepts "OUT" or "IN" in any case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := d.Prefix(); err != nil {
		return "", err
	}
	return d, nil
}

// FormatPaymentNumber returns a payment number like "PAY-ACME-2025-000042".
func FormatPaymentNumber(companyCode string, year, seq int, dir Direction) (string, error) {
	prefix, err := dir.Prefix()
	if err != nil {
		return "", err
	}
	if companyCode == "" {
		return "", fmt.Errorf("company code is required")
	}
	if seq < 0 {
		return "", fmt.Errorf("sequence must not be negative, got %d", seq)
	}
	return fmt.Sprintf("%s-%s-%04d-%06d", prefix, companyCode, year, seq), nil
}

// JournalNumber returns the journal number for a payment: "PAY-" + number.
func JournalNumber(paymentNumber string) string {
	return JournalPrefix + paymentNumber
}
