package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cleared-dev/glcore/internal/accounts"
	"github.com/cleared-dev/glcore/internal/auditlog"
	"github.com/cleared-dev/glcore/internal/clock"
	"github.com/cleared-dev/glcore/internal/config"
	"github.com/cleared-dev/glcore/internal/gitops"
	"github.com/cleared-dev/glcore/internal/journal"
	"github.com/cleared-dev/glcore/internal/logging"
	"github.com/cleared-dev/glcore/internal/payment"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	repo       string
	configPath string
	logLevel   string
	clock      clock.Clock
}

// app is the wired set of components a command runs against.
type app struct {
	repo  string
	cfg   *config.Config
	log   *zap.Logger
	clock clock.Clock
	audit *auditlog.Recorder
}

// load resolves the repo, reads .env and glcore.yaml, applies environment
// overrides and builds the logger. A missing glcore.yaml falls back to
// defaults so single files can be checked outside a project.
func (o *rootOptions) load() (*app, error) {
	repo, err := filepath.Abs(o.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := config.LoadDotEnv(filepath.Join(repo, ".env")); err != nil {
		return nil, err
	}

	path := o.configPath
	if path == "" {
		path = filepath.Join(repo, config.FileName)
	}
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && o.configPath == "" {
		cfg = config.Default("", "")
	} else if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(nil)
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	clk := o.clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &app{
		repo:  repo,
		cfg:   cfg,
		log:   log,
		clock: clk,
		audit: auditlog.NewRecorder(repo, clk),
	}, nil
}

// close flushes the audit log and syncs the logger.
func (a *app) close() error {
	err := a.audit.Flush()
	_ = a.log.Sync()
	return err
}

// directory opens the configured account directory. The returned func
// releases it.
func (a *app) directory() (journal.AccountDirectory, func() error, error) {
	noop := func() error { return nil }
	switch a.cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := accounts.OpenSQLite(a.cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("getting sql handle: %w", err)
		}
		store, err := accounts.NewStore(db, a.cfg.Company.CompanyID)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil
	default:
		svc, err := accounts.Load(a.repo)
		if err != nil {
			return nil, nil, err
		}
		return svc, noop, nil
	}
}

// validator builds a journal validator enforcing the configured posting
// permissions and balance tolerance.
func (a *app) validator(dir journal.AccountDirectory) (*journal.Validator, error) {
	eps, err := a.cfg.Ledger.Balance()
	if err != nil {
		return nil, err
	}
	return journal.NewValidator(dir, journal.Options{
		Policy:  journal.NewRolePolicy(a.cfg.Posting.Roles()),
		Epsilon: &eps,
		Logger:  a.log,
	}), nil
}

// translator builds a payment translator over v.
func (a *app) translator(v *journal.Validator) (*payment.Translator, error) {
	policy, err := a.cfg.FXPolicy()
	if err != nil {
		return nil, err
	}
	eps, err := a.cfg.Ledger.Allocation()
	if err != nil {
		return nil, err
	}
	return payment.NewTranslator(v, payment.Options{
		Policy:            policy,
		Clock:             a.clock,
		BaseCurrency:      a.cfg.Ledger.Currency(),
		AllocationEpsilon: &eps,
		Logger:            a.log,
	}), nil
}

// pipeline opens the directory and wires validator and translator together.
func (a *app) pipeline() (*payment.Translator, func() error, error) {
	dir, release, err := a.directory()
	if err != nil {
		return nil, nil, err
	}
	v, err := a.validator(dir)
	if err != nil {
		release()
		return nil, nil, err
	}
	t, err := a.translator(v)
	if err != nil {
		release()
		return nil, nil, err
	}
	return t, release, nil
}

// commit records paths in git when git.commit is enabled and the project is
// a repository.
func (a *app) commit(ctx context.Context, message string, paths ...string) error {
	if !a.cfg.Git.Commit || !gitops.IsRepo(a.repo) {
		return nil
	}
	repo := &gitops.Repo{Dir: a.repo}
	hash, err := repo.Commit(ctx, message, gitAuthor(a.cfg.Git), paths...)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return err
	}
	a.log.Info("committed", zap.String("hash", hash), zap.String("message", message))
	return nil
}

func gitAuthor(g config.GitConfig) gitops.Author {
	return gitops.Author{Name: g.AuthorName, Email: g.AuthorEmail}
}

// withApp runs fn against a loaded app and always flushes the audit log.
func (o *rootOptions) withApp(ctx context.Context, fn func(context.Context, *app) error) (err error) {
	a, err := o.load()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = fmt.Errorf("writing audit log: %w", cerr)
		}
	}()
	return fn(ctx, a)
}
