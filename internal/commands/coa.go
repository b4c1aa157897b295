package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/glcore/internal/accounts"
	"github.com/cleared-dev/glcore/internal/auditlog"
	"github.com/cleared-dev/glcore/internal/coa"
	"github.com/cleared-dev/glcore/internal/journal"
	"github.com/cleared-dev/glcore/internal/model"
)

// ErrRejected is returned when a command's subject fails validation. The
// verdict itself has already been printed and audited.
var ErrRejected = errors.New("validation failed")

func newCOACommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coa",
		Short: "Chart of accounts operations",
	}
	cmd.AddCommand(newCOACheckCommand(opts))
	cmd.AddCommand(newCOAImportCommand(opts))
	return cmd
}

func newCOACheckCommand(opts *rootOptions) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "check <lines.csv>",
		Short: "Check posting lines against the chart of accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runCOACheck(ctx, cmd, a, args[0], currency)
			})
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "journal currency (default ledger.base_currency)")
	return cmd
}

func runCOACheck(ctx context.Context, cmd *cobra.Command, a *app, path, currency string) error {
	out := cmd.OutOrStdout()
	lines, err := readLinesFile(path)
	if err != nil {
		return err
	}
	if currency == "" {
		currency = a.cfg.Ledger.Currency()
	}

	dir, release, err := a.directory()
	if err != nil {
		return err
	}
	defer release()

	found, err := dir.Lookup(ctx, model.AccountIDs(lines))
	if err != nil {
		return fmt.Errorf("looking up accounts: %w", err)
	}
	all, err := dir.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	entry := auditlog.Entry{
		RunID:     uuid.NewString(),
		Operation: auditlog.OpCOACheck,
		Subject:   filepath.Base(path),
	}
	res, err := coa.NewEngine(a.log).Validate(lines, strings.ToUpper(currency), found, all)
	if err != nil {
		var verr *coa.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		entry.Code = string(verr.Code)
		entry.Detail = verr.Message
		a.audit.Record(entry)
		fmt.Fprintf(out, "REJECTED %s\n", verr.Error())
		for _, id := range verr.AccountIDs() {
			fmt.Fprintf(out, "  account: %s\n", id)
		}
		return fmt.Errorf("%s: %w", entry.Subject, ErrRejected)
	}

	entry.Code = auditlog.CodeOK
	a.audit.Record(entry)
	fmt.Fprintf(out, "OK %d lines, %d accounts\n", len(lines), len(res.AccountDetails))
	printWarnings(out, res.Warnings)
	return nil
}

func newCOAImportCommand(opts *rootOptions) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load accounts/chart-of-accounts.csv into the SQLite account store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runCOAImport(ctx, cmd, a, dsn)
			})
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite DSN (default storage.dsn)")
	return cmd
}

func runCOAImport(ctx context.Context, cmd *cobra.Command, a *app, dsn string) error {
	if dsn == "" {
		dsn = a.cfg.Storage.DSN
	}
	if dsn == "" {
		return errors.New("no SQLite DSN: pass --dsn or set storage.dsn")
	}

	svc, err := accounts.Load(a.repo)
	if err != nil {
		return err
	}

	db, err := accounts.OpenSQLite(dsn)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql handle: %w", err)
	}
	defer sqlDB.Close()

	store, err := accounts.NewStore(db, a.cfg.Company.CompanyID)
	if err != nil {
		return err
	}
	if err := store.Upsert(ctx, svc.All()); err != nil {
		return err
	}

	a.audit.Record(auditlog.Entry{
		RunID:     uuid.NewString(),
		Operation: auditlog.OpCOAImport,
		Subject:   a.cfg.Company.CompanyID,
		Code:      auditlog.CodeOK,
		Detail:    fmt.Sprintf("%d accounts", len(svc.All())),
	})
	a.log.Info("chart imported",
		zap.String("company_id", a.cfg.Company.CompanyID),
		zap.Int("accounts", len(svc.All())))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts for company %s\n", len(svc.All()), a.cfg.Company.CompanyID)
	return nil
}

func readLinesFile(path string) ([]model.PostingLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	lines, err := journal.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}
