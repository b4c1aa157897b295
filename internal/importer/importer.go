// Package importer reads payment events from files dropped in a project's
// import/ directory.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/glcore/internal/model"
)

// DateLayout is the payment date format used by every file format.
const DateLayout = "2006-01-02"

// Parser converts a payment file into payment events.
type Parser interface {
	Parse(r io.Reader) ([]model.PaymentProcessingInput, error)
	Format() string
	Extensions() []string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
	byExt   map[string]Parser
}

// FileInfo describes a payment file in the import directory.
type FileInfo struct {
	Name   string
	Path   string
	Size   int64
	Format string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
		byExt:   make(map[string]Parser),
	}
}

// Register adds a parser. Panics on duplicate format or extension.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	for _, ext := range p.Extensions() {
		ext = strings.ToLower(ext)
		if _, ok := r.byExt[ext]; ok {
			panic("duplicate parser extension: " + ext)
		}
		r.byExt[ext] = p
	}
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile returns the parser registered for name's extension, or nil.
func (r *Registry) ForFile(name string) Parser {
	return r.byExt[strings.ToLower(filepath.Ext(name))]
}

// Formats lists registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&YAMLParser{})
	r.Register(&CSVParser{})
	return r
}

// ParseFile opens path and parses it with the parser matching its extension.
func (r *Registry) ParseFile(path string) ([]model.PaymentProcessingInput, error) {
	p := r.ForFile(path)
	if p == nil {
		return nil, fmt.Errorf("no parser for %s (known formats: %s)", filepath.Base(path), strings.Join(r.Formats(), ", "))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	payments, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s as %s: %w", filepath.Base(path), p.Format(), err)
	}
	return payments, nil
}

// importDir is the subdirectory for payment files.
const importDir = "import"

// processedDir is the subdirectory for processed payment files.
const processedDir = "import/processed"

// Scan returns payment files in <repoRoot>/import/ that reg can parse.
func Scan(repoRoot string, reg *Registry) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := reg.ForFile(e.Name())
		if p == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: p.Format(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

// parseRate returns nil for an empty rate.
func parseRate(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseAmount("exchange rate", s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
