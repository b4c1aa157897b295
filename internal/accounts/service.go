package accounts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/glcore/internal/model"
)

// Service is an in-memory account directory over a loaded chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
	children map[string][]string
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	children := make(map[string][]string)
	for _, a := range accounts {
		byID[a.ID] = a
		if a.ParentID != "" {
			children[a.ParentID] = append(children[a.ParentID], a.ID)
		}
	}
	return &Service{accounts: accounts, byID: byID, children: children}
}

// Load reads accounts/chart-of-accounts.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := ChartPath(repoRoot)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// ChartPath returns the chart-of-accounts location under a repo root.
func ChartPath(repoRoot string) string {
	return filepath.Join(repoRoot, "accounts", "chart-of-accounts.csv")
}

// Lookup returns every requested account that exists. Unknown ids are absent
// from the result; that is not an error.
func (s *Service) Lookup(_ context.Context, ids []string) (map[string]model.Account, error) {
	found := make(map[string]model.Account, len(ids))
	for _, id := range ids {
		if a, ok := s.byID[id]; ok {
			found[id] = a
		}
	}
	return found, nil
}

// ListAll returns the whole chart.
func (s *Service) ListAll(_ context.Context) ([]model.Account, error) {
	return s.accounts, nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Postable returns active accounts that are neither level 0 nor parents.
func (s *Service) Postable() []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.IsActive && a.Level != 0 && len(s.children[a.ID]) == 0 {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	path := ChartPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
