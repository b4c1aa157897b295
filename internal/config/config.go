package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/glcore/internal/fxpolicy"
	"github.com/cleared-dev/glcore/internal/model"
)

// FileName is the project configuration file at the repo root.
const FileName = "glcore.yaml"

// Config represents the top-level glcore.yaml configuration.
type Config struct {
	Company CompanyConfig `yaml:"company"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	FX      FXConfig      `yaml:"fx"`
	Posting PostingConfig `yaml:"posting"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Git     GitConfig     `yaml:"git"`
}

// CompanyConfig identifies the posting scope.
type CompanyConfig struct {
	Name      string `yaml:"name"`
	Code      string `yaml:"code"` // used in payment numbers
	TenantID  string `yaml:"tenant_id"`
	CompanyID string `yaml:"company_id"`
}

// LedgerConfig holds the posting currency and comparison tolerances.
// Tolerances are decimal strings so they survive YAML without float drift.
type LedgerConfig struct {
	BaseCurrency      string `yaml:"base_currency"`
	BalanceEpsilon    string `yaml:"balance_epsilon"`
	AllocationEpsilon string `yaml:"allocation_epsilon"`
}

// FXConfig lists currency pairs that may be converted without a rate.
type FXConfig struct {
	ExemptPairs []string `yaml:"exempt_pairs,omitempty"`
}

// PostingConfig maps journal types to the roles allowed to post them.
type PostingConfig struct {
	Permissions map[string][]string `yaml:"permissions"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// StorageConfig selects the account directory backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "csv" or "sqlite"
	DSN    string `yaml:"dsn,omitempty"`
}

// GitConfig controls commits of batch results. Commit has no effect outside a
// git repository.
type GitConfig struct {
	Commit      bool   `yaml:"commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Storage drivers.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// Environment variables that override file settings.
const (
	EnvBaseCurrency   = "GLCORE_BASE_CURRENCY"
	EnvBalanceEpsilon = "GLCORE_BALANCE_EPSILON"
	EnvLogLevel       = "GLCORE_LOG_LEVEL"
	EnvDBDSN          = "GLCORE_DB_DSN"
)

// Load reads a glcore.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	cfg.Posting.Permissions = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Posting.Permissions) == 0 {
		cfg.Posting.Permissions = DefaultPermissions()
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(companyName, companyCode string) *Config {
	return &Config{
		Company: CompanyConfig{
			Name: companyName,
			Code: companyCode,
		},
		Ledger: LedgerConfig{
			BaseCurrency:      "MYR",
			BalanceEpsilon:    "0.01",
			AllocationEpsilon: "0.01",
		},
		Posting: PostingConfig{
			Permissions: DefaultPermissions(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Driver: DriverCSV,
		},
		Git: GitConfig{
			AuthorName:  "glcore",
			AuthorEmail: "glcore@localhost",
		},
	}
}

// DefaultPermissions returns the roles allowed to post each journal type
// when the configuration names none.
func DefaultPermissions() map[string][]string {
	return map[string][]string{
		string(model.JournalTypePayment): {"OWNER", "ADMIN", "ACCOUNTANT", "FINANCE_MANAGER"},
		string(model.JournalTypeManual):  {"OWNER", "ADMIN", "ACCOUNTANT"},
	}
}

// LoadDotEnv loads environment variables from a .env file. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables looked up with
// getenv (os.Getenv when nil). Empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvBaseCurrency); v != "" {
		c.Ledger.BaseCurrency = v
	}
	if v := getenv(EnvBalanceEpsilon); v != "" {
		c.Ledger.BalanceEpsilon = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := getenv(EnvDBDSN); v != "" {
		c.Storage.DSN = v
		if c.Storage.Driver == "" || c.Storage.Driver == DriverCSV {
			c.Storage.Driver = DriverSQLite
		}
	}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if len(strings.TrimSpace(c.Ledger.BaseCurrency)) != 3 {
		errs = append(errs, fmt.Errorf("ledger.base_currency must be a 3-letter code, got %q", c.Ledger.BaseCurrency))
	}
	if _, err := c.Ledger.Balance(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Ledger.Allocation(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.FXPolicy(); err != nil {
		errs = append(errs, err)
	}
	for jt := range c.Posting.Permissions {
		switch model.JournalType(strings.ToUpper(jt)) {
		case model.JournalTypePayment, model.JournalTypeManual:
		default:
			errs = append(errs, fmt.Errorf("posting.permissions: unknown journal type %q", jt))
		}
	}
	switch c.Storage.Driver {
	case "", DriverCSV:
	case DriverSQLite:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// Currency returns the normalized base currency.
func (l LedgerConfig) Currency() string {
	return strings.ToUpper(strings.TrimSpace(l.BaseCurrency))
}

// Balance returns the journal balance tolerance.
func (l LedgerConfig) Balance() (decimal.Decimal, error) {
	return parseEpsilon("ledger.balance_epsilon", l.BalanceEpsilon)
}

// Allocation returns the allocation-total tolerance.
func (l LedgerConfig) Allocation() (decimal.Decimal, error) {
	return parseEpsilon("ledger.allocation_epsilon", l.AllocationEpsilon)
}

func parseEpsilon(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return model.DefaultEpsilon, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: parsing %q: %w", field, s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s must not be negative, got %s", field, s)
	}
	return d, nil
}

// FXPolicy builds the FX policy from the exempt pairs.
func (c *Config) FXPolicy() (*fxpolicy.DefaultPolicy, error) {
	p, err := fxpolicy.NewDefaultPolicy(c.FX.ExemptPairs...)
	if err != nil {
		return nil, fmt.Errorf("fx.exempt_pairs: %w", err)
	}
	return p, nil
}

// Roles returns posting permissions keyed by journal type, in the form the
// journal role policy expects.
func (p PostingConfig) Roles() map[model.JournalType][]string {
	out := make(map[model.JournalType][]string, len(p.Permissions))
	keys := make([]string, 0, len(p.Permissions))
	for k := range p.Permissions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		jt := model.JournalType(strings.ToUpper(k))
		out[jt] = append(out[jt], p.Permissions[k]...)
	}
	return out
}
