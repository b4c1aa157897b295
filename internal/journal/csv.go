package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/model"
)

// Header is the CSV header for posting-line files.
const Header = "account_id,description,debit,credit,reference"

const (
	numFields = 5
	colAcctID = 0
	colDesc   = 1
	colDebit  = 2
	colCredit = 3
	colRef    = 4
)

// ReadLines reads all posting lines from a CSV reader.
func ReadLines(r io.Reader) ([]model.PostingLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading posting lines CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var lines []model.PostingLine
	for i, rec := range records[1:] {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes posting lines to a CSV writer (including header).
func WriteLines(w io.Writer, lines []model.PostingLine) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, line := range lines {
		if err := cw.Write(MarshalLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a PostingLine to a CSV row.
func MarshalLine(line model.PostingLine) []string {
	row := make([]string, numFields)
	row[colAcctID] = line.AccountID
	row[colDesc] = line.Description
	if !line.Debit.IsZero() {
		row[colDebit] = line.Debit.StringFixed(2)
	}
	if !line.Credit.IsZero() {
		row[colCredit] = line.Credit.StringFixed(2)
	}
	row[colRef] = line.Reference
	return row
}

// UnmarshalLine converts a CSV row to a PostingLine.
func UnmarshalLine(record []string) (model.PostingLine, error) {
	if len(record) != numFields {
		return model.PostingLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var debit, credit decimal.Decimal
	var err error

	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return model.PostingLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}

	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return model.PostingLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	return model.PostingLine{
		AccountID:   record[colAcctID],
		Description: record[colDesc],
		Debit:       debit,
		Credit:      credit,
		Reference:   record[colRef],
	}, nil
}
