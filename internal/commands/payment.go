package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/glcore/internal/auditlog"
	"github.com/cleared-dev/glcore/internal/id"
	"github.com/cleared-dev/glcore/internal/importer"
	"github.com/cleared-dev/glcore/internal/journal"
	"github.com/cleared-dev/glcore/internal/model"
	"github.com/cleared-dev/glcore/internal/payment"
)

func newPaymentCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment and receipt operations",
	}
	cmd.AddCommand(newPaymentValidateCommand(opts))
	cmd.AddCommand(newPaymentBatchCommand(opts))
	cmd.AddCommand(newPaymentNumberCommand(opts))
	cmd.AddCommand(newPaymentSummaryCommand(opts))
	return cmd
}

// actorFlags identify who submits payments for posting.
type actorFlags struct {
	user         string
	role         string
	baseCurrency string
}

func (f *actorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "cli", "posting user id")
	cmd.Flags().StringVar(&f.role, "role", "ACCOUNTANT", "posting user role")
	cmd.Flags().StringVar(&f.baseCurrency, "base-currency", "", "base currency (default ledger.base_currency)")
}

// verdict is the outcome of one payment in a file. Exactly one of result
// and err is set.
type verdict struct {
	input  model.PaymentProcessingInput
	result *payment.Result
	err    *payment.Error
}

// fileReport collects the verdicts for one payment file.
type fileReport struct {
	name     string
	verdicts []verdict
	parseErr error
}

func (r fileReport) rejected() int {
	if r.parseErr != nil {
		return 1
	}
	n := 0
	for _, v := range r.verdicts {
		if v.err != nil {
			n++
		}
	}
	return n
}

// fillScope defaults a payment's tenant and company to the configured company.
func (a *app) fillScope(in *model.PaymentProcessingInput) {
	if in.TenantID == "" {
		in.TenantID = a.cfg.Company.TenantID
	}
	if in.CompanyID == "" {
		in.CompanyID = a.cfg.Company.CompanyID
	}
}

// processFile translates every payment in path and records an audit entry
// per verdict. The error return is reserved for failures that are not a
// verdict on the payment itself.
func processFile(ctx context.Context, a *app, t *payment.Translator, path string, actor actorFlags, op string) (fileReport, error) {
	report := fileReport{name: filepath.Base(path)}

	inputs, err := importer.DefaultRegistry().ParseFile(path)
	if err != nil {
		report.parseErr = err
		a.audit.Record(auditlog.Entry{
			Operation: op,
			Subject:   report.name,
			Code:      auditlog.CodeInvalidFile,
			Detail:    err.Error(),
		})
		return report, nil
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		a.fillScope(&in)

		res, err := t.Process(ctx, in, actor.user, actor.role, actor.baseCurrency)
		v := verdict{input: in, result: res}
		entry := auditlog.Entry{Operation: op, Subject: in.PaymentNumber}
		if err != nil {
			var perr *payment.Error
			if !errors.As(err, &perr) {
				return report, err
			}
			v.err = perr
			entry.RunID = perr.RunID
			entry.Code = string(perr.Code)
			entry.Detail = perr.Message
		} else {
			entry.RunID = res.RunID
			entry.Code = auditlog.CodeOK
			entry.Detail = fmt.Sprintf("%s %s", res.JournalNumber, res.TotalAmount.StringFixed(2))
		}
		a.audit.Record(entry)
		report.verdicts = append(report.verdicts, v)
	}
	return report, nil
}

func printVerdict(out io.Writer, v verdict, withLines bool) error {
	if v.err != nil {
		fmt.Fprintf(out, "REJECTED %s %s\n", v.input.PaymentNumber, v.err.Error())
		for _, msg := range v.err.Errors {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
		return nil
	}
	r := v.result
	fmt.Fprintf(out, "OK %s journal=%s total=%s allocations=%d\n",
		v.input.PaymentNumber, r.JournalNumber, r.TotalAmount.StringFixed(2), r.AllocationsProcessed)
	printWarnings(out, r.Warnings)
	if withLines {
		return journal.WriteLines(out, r.Lines)
	}
	return nil
}

func newPaymentValidateCommand(opts *rootOptions) *cobra.Command {
	var actor actorFlags

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Translate a payment file into journals and validate them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runPaymentValidate(ctx, cmd.OutOrStdout(), a, args[0], actor)
			})
		},
	}
	actor.register(cmd)
	return cmd
}

func runPaymentValidate(ctx context.Context, out io.Writer, a *app, path string, actor actorFlags) error {
	t, release, err := a.pipeline()
	if err != nil {
		return err
	}
	defer release()

	report, err := processFile(ctx, a, t, path, actor, auditlog.OpPaymentValidate)
	if err != nil {
		return err
	}
	if report.parseErr != nil {
		return report.parseErr
	}
	for _, v := range report.verdicts {
		if err := printVerdict(out, v, true); err != nil {
			return err
		}
	}
	if n := report.rejected(); n > 0 {
		return fmt.Errorf("%s: %d of %d payments rejected: %w", report.name, n, len(report.verdicts), ErrRejected)
	}
	return nil
}

func newPaymentBatchCommand(opts *rootOptions) *cobra.Command {
	var actor actorFlags
	var workers int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Validate every payment file in import/ and move accepted files to import/processed/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1, got %d", workers)
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runPaymentBatch(ctx, cmd.OutOrStdout(), a, actor, workers)
			})
		},
	}
	actor.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 4, "files validated in parallel")
	return cmd
}

func runPaymentBatch(ctx context.Context, out io.Writer, a *app, actor actorFlags, workers int) error {
	files, err := importer.Scan(a.repo, importer.DefaultRegistry())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No payment files in import/")
		return nil
	}

	t, release, err := a.pipeline()
	if err != nil {
		return err
	}
	defer release()

	reports := make([]fileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			r, err := processFile(gctx, a, t, f.Path, actor, auditlog.OpPaymentBatch)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	moved, rejected := 0, 0
	for _, r := range reports {
		if r.parseErr != nil {
			fmt.Fprintf(out, "%s: INVALID %v\n", r.name, r.parseErr)
			rejected++
			continue
		}
		n := r.rejected()
		fmt.Fprintf(out, "%s: %d accepted, %d rejected\n", r.name, len(r.verdicts)-n, n)
		for _, v := range r.verdicts {
			if err := printVerdict(out, v, false); err != nil {
				return err
			}
		}
		if n > 0 {
			rejected += n
			continue
		}
		if err := importer.MarkProcessed(a.repo, r.name); err != nil {
			return err
		}
		moved++
	}

	if err := a.audit.Flush(); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	if err := a.commit(ctx, fmt.Sprintf("payment batch: %d files, %d moved", len(files), moved), "logs", "import"); err != nil {
		return err
	}

	a.log.Info("payment batch complete",
		zap.Int("files", len(files)),
		zap.Int("moved", moved),
		zap.Int("rejected", rejected))
	fmt.Fprintf(out, "%d files, %d moved to import/processed\n", len(files), moved)
	if rejected > 0 {
		return fmt.Errorf("%d payments rejected: %w", rejected, ErrRejected)
	}
	return nil
}

func newPaymentNumberCommand(opts *rootOptions) *cobra.Command {
	var seq int
	var direction, company string

	cmd := &cobra.Command{
		Use:   "number",
		Short: "Generate a payment or receipt number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(_ context.Context, a *app) error {
				dir, err := id.ParseDirection(direction)
				if err != nil {
					return err
				}
				if company == "" {
					company = a.cfg.Company.Code
				}
				number, err := payment.GeneratePaymentNumber(a.clock, company, seq, dir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), number)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&seq, "seq", 0, "sequence number (required)")
	_ = cmd.MarkFlagRequired("seq")
	cmd.Flags().StringVar(&direction, "direction", string(id.DirectionOut), "OUT for payments, IN for receipts")
	cmd.Flags().StringVar(&company, "company", "", "company code (default company.code)")
	return cmd
}

func newPaymentSummaryCommand(opts *rootOptions) *cobra.Command {
	var outstanding map[string]string

	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Summarize allocations and check them against outstanding balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(_ context.Context, a *app) error {
				return runPaymentSummary(cmd.OutOrStdout(), args[0], outstanding)
			})
		},
	}
	cmd.Flags().StringToStringVar(&outstanding, "outstanding", nil, "outstanding balance per document id (doc=amount,...)")
	return cmd
}

func runPaymentSummary(out io.Writer, path string, outstanding map[string]string) error {
	balances := make(map[string]decimal.Decimal, len(outstanding))
	for doc, s := range outstanding {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("outstanding balance for %s: %w", doc, err)
		}
		balances[doc] = d
	}

	inputs, err := importer.DefaultRegistry().ParseFile(path)
	if err != nil {
		return err
	}

	invalid := 0
	for _, in := range inputs {
		s := payment.CalculateSummary(in.Allocations)
		fmt.Fprintf(out, "%s bills=%s invoices=%s total=%s\n",
			in.PaymentNumber, s.BillPayments.StringFixed(2), s.InvoiceReceipts.StringFixed(2), s.TotalAmount.StringFixed(2))
		if len(balances) == 0 {
			continue
		}
		check := payment.ValidateAllocations(in.Allocations, balances)
		for _, msg := range check.Errors {
			fmt.Fprintf(out, "  error: %s\n", msg)
		}
		for _, msg := range check.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", msg)
		}
		if !check.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d payments allocate to settled documents: %w", invalid, ErrRejected)
	}
	return nil
}
