package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cleared-dev/glcore/internal/model"
)

// ErrNoCompany is returned when a Store is created without a company scope.
var ErrNoCompany = errors.New("invalid_company")

// Record is the persisted form of a chart-of-accounts row.
type Record struct {
	CompanyID string    `gorm:"type:text;primaryKey"`
	ID        string    `gorm:"type:text;primaryKey"`
	Code      string    `gorm:"type:text;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Type      string    `gorm:"type:text;not null"`
	Currency  string    `gorm:"type:text;not null"`
	IsActive  bool      `gorm:"not null"`
	Level     int       `gorm:"not null"`
	ParentID  string    `gorm:"type:text;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "gl_accounts" }

func toRecord(companyID string, a model.Account) Record {
	return Record{
		CompanyID: companyID,
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Type:      string(a.Type),
		Currency:  strings.ToUpper(a.Currency),
		IsActive:  a.IsActive,
		Level:     a.Level,
		ParentID:  a.ParentID,
	}
}

func (r Record) toAccount() model.Account {
	return model.Account{
		ID:       r.ID,
		Code:     r.Code,
		Name:     r.Name,
		Type:     model.AccountType(r.Type),
		Currency: strings.ToUpper(r.Currency),
		IsActive: r.IsActive,
		Level:    r.Level,
		ParentID: r.ParentID,
	}
}

// Store is a database-backed account directory scoped to one company.
type Store struct {
	db        *gorm.DB
	companyID string
}

// NewStore wraps an open gorm connection.
func NewStore(db *gorm.DB, companyID string) (*Store, error) {
	if companyID == "" {
		return nil, ErrNoCompany
	}
	return &Store{db: db, companyID: companyID}, nil
}

// OpenSQLite opens (or creates) a SQLite database and migrates the accounts table.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the gl_accounts table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("migrating gl_accounts: %w", err)
	}
	return nil
}

// upsertColumns are rewritten when an account already exists.
var upsertColumns = []string{"code", "name", "type", "currency", "is_active", "level", "parent_id", "updated_at"}

// Upsert inserts or replaces accounts for the store's company. Every column
// is written explicitly so that false and zero values are stored as given.
func (s *Store) Upsert(ctx context.Context, accounts []model.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	records := make([]Record, len(accounts))
	for i, a := range accounts {
		records[i] = toRecord(s.companyID, a)
	}
	err := s.db.WithContext(ctx).
		Select("*").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("upserting accounts: %w", err)
	}
	return nil
}

// Lookup returns every requested account that exists for the company.
func (s *Store) Lookup(ctx context.Context, ids []string) (map[string]model.Account, error) {
	found := make(map[string]model.Account, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var records []Record
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", s.companyID, ids).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("looking up accounts: %w", err)
	}
	for _, r := range records {
		found[r.ID] = r.toAccount()
	}
	return found, nil
}

// ListAll returns the company's full chart ordered by code.
func (s *Store) ListAll(ctx context.Context) ([]model.Account, error) {
	var records []Record
	err := s.db.WithContext(ctx).
		Where("company_id = ?", s.companyID).
		Order("code").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	accounts := make([]model.Account, len(records))
	for i, r := range records {
		accounts[i] = r.toAccount()
	}
	return accounts, nil
}
