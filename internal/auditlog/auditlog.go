// Package auditlog keeps a CSV trail of validation verdicts under logs/.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cleared-dev/glcore/internal/clock"
)

// Operations recorded by the CLI.
const (
	OpCOACheck        = "coa_check"
	OpCOAImport       = "coa_import"
	OpJournalValidate = "journal_validate"
	OpPaymentValidate = "payment_validate"
	OpPaymentBatch    = "payment_batch"
)

// Codes recorded alongside the errcode values.
const (
	CodeOK          = "OK"           // accepted subject
	CodeInvalidFile = "INVALID_FILE" // payment file could not be parsed
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Operation string
	Subject   string // payment or journal number, or file name
	Code      string // error code, or CodeOK
	Detail    string
}

// Accepted reports whether the entry records a successful validation.
func (e Entry) Accepted() bool { return e.Code == CodeOK }

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,run_id,operation,subject,code,detail"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/audit-log.csv"
	colTimestamp = 0
	colRunID     = 1
	colOperation = 2
	colSubject   = 3
	colCode      = 4
	colDetail    = 5
)

// Path returns the audit log location under repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colOperation] = e.Operation
	row[colSubject] = e.Subject
	row[colCode] = e.Code
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Operation: record[colOperation],
		Subject:   record[colSubject],
		Code:      record[colCode],
		Detail:    record[colDetail],
	}, nil
}

// Append writes entries to <repoRoot>/logs/audit-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(repoRoot)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/audit-log.csv.
// Returns nil if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(Path(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder buffers entries from concurrent validations and appends them in
// one write. It is safe for concurrent use.
type Recorder struct {
	repoRoot string
	clock    clock.Clock

	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates a Recorder. A nil clock uses the system clock.
func NewRecorder(repoRoot string, clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Recorder{repoRoot: repoRoot, clock: clk}
}

// Record buffers one entry, stamping it with the recorder's clock when the
// timestamp is unset.
func (r *Recorder) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = r.clock.Now()
	}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

// Pending returns the number of buffered entries.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Flush appends buffered entries to the log and clears the buffer.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}
	return Append(r.repoRoot, entries)
}
