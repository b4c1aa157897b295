package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/glcore/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
const Header = "account_id,code,name,type,currency,active,level,parent_id"

const (
	numFields   = 8
	colID       = 0
	colCode     = 1
	colName     = 2
	colType     = 3
	colCurrency = 4
	colActive   = 5
	colLevel    = 6
	colParent   = 7
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCurrency] = acct.Currency
	row[colActive] = strconv.FormatBool(acct.IsActive)
	row[colLevel] = strconv.Itoa(acct.Level)
	row[colParent] = acct.ParentID
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if record[colID] == "" {
		return model.Account{}, fmt.Errorf("empty account_id")
	}

	typ, ok := model.ParseAccountType(record[colType])
	if !ok {
		return model.Account{}, fmt.Errorf("unknown account type %q", record[colType])
	}

	active, err := strconv.ParseBool(record[colActive])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
	}

	level, err := strconv.Atoi(record[colLevel])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing level %q: %w", record[colLevel], err)
	}

	return model.Account{
		ID:       record[colID],
		Code:     record[colCode],
		Name:     record[colName],
		Type:     typ,
		Currency: strings.ToUpper(record[colCurrency]),
		IsActive: active,
		Level:    level,
		ParentID: record[colParent],
	}, nil
}
