package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/glcore/internal/auditlog"
	"github.com/cleared-dev/glcore/internal/coa"
	"github.com/cleared-dev/glcore/internal/journal"
	"github.com/cleared-dev/glcore/internal/model"
)

// postingFlags identify who is posting. Tenant and company default to the
// configured company.
type postingFlags struct {
	tenant  string
	company string
	user    string
	role    string
}

func (f *postingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tenant, "tenant", "", "tenant id (default company.tenant_id)")
	cmd.Flags().StringVar(&f.company, "company-id", "", "company id (default company.company_id)")
	cmd.Flags().StringVar(&f.user, "user", "", "posting user id")
	cmd.Flags().StringVar(&f.role, "role", "", "posting user role")
}

func (f *postingFlags) postingContext(a *app) model.PostingContext {
	pc := model.PostingContext{
		TenantID:  f.tenant,
		CompanyID: f.company,
		UserID:    f.user,
		UserRole:  f.role,
	}
	if pc.TenantID == "" {
		pc.TenantID = a.cfg.Company.TenantID
	}
	if pc.CompanyID == "" {
		pc.CompanyID = a.cfg.Company.CompanyID
	}
	return pc
}

func newJournalCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal operations",
	}
	cmd.AddCommand(newJournalValidateCommand(opts))
	return cmd
}

type journalValidateOptions struct {
	posting     postingFlags
	number      string
	date        string
	journalType string
	currency    string
	description string
}

func newJournalValidateCommand(opts *rootOptions) *cobra.Command {
	jo := &journalValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <lines.csv>",
		Short: "Validate a journal before posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runJournalValidate(ctx, cmd.OutOrStdout(), a, args[0], jo)
			})
		},
	}
	jo.posting.register(cmd)
	cmd.Flags().StringVar(&jo.number, "number", "", "journal number (default file name)")
	cmd.Flags().StringVar(&jo.date, "date", "", "journal date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&jo.journalType, "type", string(model.JournalTypeManual), "journal type (PAYMENT or MANUAL)")
	cmd.Flags().StringVar(&jo.currency, "currency", "", "journal currency (default ledger.base_currency)")
	cmd.Flags().StringVar(&jo.description, "description", "", "journal description")
	return cmd
}

func runJournalValidate(ctx context.Context, out io.Writer, a *app, path string, jo *journalValidateOptions) error {
	lines, err := readLinesFile(path)
	if err != nil {
		return err
	}

	date := a.clock.Now()
	if jo.date != "" {
		date, err = time.Parse("2006-01-02", jo.date)
		if err != nil {
			return fmt.Errorf("parsing --date: %w", err)
		}
	}
	number := jo.number
	if number == "" {
		number = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	currency := strings.ToUpper(jo.currency)
	if currency == "" {
		currency = a.cfg.Ledger.Currency()
	}

	dir, release, err := a.directory()
	if err != nil {
		return err
	}
	defer release()

	v, err := a.validator(dir)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	res, err := v.Validate(ctx, model.JournalPostingInput{
		Context:       jo.posting.postingContext(a),
		Type:          model.JournalType(strings.ToUpper(jo.journalType)),
		JournalNumber: number,
		Description:   jo.description,
		JournalDate:   date,
		Currency:      currency,
		Lines:         lines,
	})
	if err != nil {
		return err
	}

	entry := auditlog.Entry{
		RunID:     runID,
		Operation: auditlog.OpJournalValidate,
		Subject:   number,
	}
	if !res.Validated {
		entry.Code = string(res.Code)
		entry.Detail = res.Message
		a.audit.Record(entry)
		fmt.Fprintf(out, "REJECTED %s %s\n", number, res.Message)
		return fmt.Errorf("%s: %w", number, ErrRejected)
	}

	entry.Code = auditlog.CodeOK
	a.audit.Record(entry)
	printJournal(out, res)
	return nil
}

func printJournal(out io.Writer, res *journal.Result) {
	fmt.Fprintf(out, "OK %s %s debit=%s credit=%s\n",
		res.JournalNumber, res.Currency, res.TotalDebit.StringFixed(2), res.TotalCredit.StringFixed(2))
	printWarnings(out, res.Warnings)
}

func printWarnings(out io.Writer, warnings []coa.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(out, "  warning: %s\n", w.Message)
	}
}
