package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/glcore/internal/accounts"
	"github.com/cleared-dev/glcore/internal/config"
	"github.com/cleared-dev/glcore/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var name, code, currency string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, name, code, currency, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&code, "code", "", "company code used in payment numbers")
	cmd.Flags().StringVar(&currency, "currency", "MYR", "base currency")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit batch results")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, name, code, currency string, useGit bool) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	cfg := config.Default(name, strings.ToUpper(code))
	cfg.Ledger.BaseCurrency = currency
	cfg.Git.Commit = useGit
	if err := cfg.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"accounts",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return err
	}

	svc := accounts.NewService(accounts.DefaultChart(currency))
	if err := svc.Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	gitignore := ".env\n*.db\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledger project at %s (%d accounts, %d postable, %s)\n",
		dir, len(svc.All()), len(svc.Postable()), currency)
	if !useGit {
		return nil
	}

	repo, err := gitops.Init(ctx, dir)
	if err != nil {
		return err
	}
	hash, err := repo.Commit(ctx, "init: Initialize "+name, gitAuthor(cfg.Git))
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	fmt.Fprintf(out, "Committed %s\n", hash)
	return nil
}
