package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/shopkeep/internal/cli"
	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import entries from bank statements",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <email> <files...>",
		Short: "Import OFX/QFX statements into a client's books",
		Long: `Import the transactions of OFX or QFX statements exported from the bank as
uncategorized entries. Credits become revenues and debits become expenses.

Lines imported before are recognized and skipped, so a statement can be
imported again safely.

Examples:
  # Import one statement
  shopkeep import ofx ana@example.com ~/Downloads/extrato_jan.ofx

  # Import every statement in a directory
  shopkeep import ofx ana@example.com ~/Downloads/extratos/*.ofx`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			files, err := expandFiles(args[1:])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import",
					"Lines already imported are kept. Run the import again to continue.")
				ctx, stop := handler.HandleInterrupts(ctx)
				defer stop()

				return runImportOFX(ctx, a, cmd.OutOrStdout(), args[0], files, dryRun)
			})
		},
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

// expandFiles resolves glob patterns. Patterns without matches are kept
// when they name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func runImportOFX(ctx context.Context, a *app, out io.Writer, email string, files []string, dryRun bool) error {
	u, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}

	parser := ofx.NewParser(a.logger)
	var lines []ofx.Line
	for _, path := range files {
		parsed, err := parseStatement(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		if len(parsed) == 0 {
			slog.Warn("No transactions found in file", "file", filepath.Base(path))
			continue
		}
		fmt.Fprintf(out, "  - %s: %d lines\n", filepath.Base(path), len(parsed))
		lines = append(lines, parsed...)
	}

	if len(lines) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		previewLines(out, lines)
		return nil
	}

	bar := progressbar.NewOptions(len(lines),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing entries"),
		progressbar.OptionClearOnFinish(),
	)

	result, err := a.books.Import(ctx, u.ID, lines, func() { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		if result != nil && result.Imported() > 0 {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Imported %d entries before stopping", result.Imported())))
		}
		return err
	}

	printImportResult(out, u, result)
	return nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Line, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

func previewLines(out io.Writer, lines []ofx.Line) {
	revenue, expense := decimal.Zero, decimal.Zero
	perAccount := make(map[string]int)
	var accounts []string
	table := cli.NewTable(out, "Date", "Type", "Amount", "Description")
	for _, l := range lines {
		if l.Type == model.CategoryTypeRevenue {
			revenue = revenue.Add(l.Amount)
		} else {
			expense = expense.Add(l.Amount)
		}
		if perAccount[l.AccountID] == 0 {
			accounts = append(accounts, l.AccountID)
		}
		perAccount[l.AccountID]++
		table.Row(l.Date.Format("2006-01-02"), string(l.Type), cli.FormatMoney(l.Amount), l.Description)
	}
	_ = table.Flush()

	fmt.Fprintln(out)
	for _, acct := range accounts {
		fmt.Fprintf(out, "Account %s: %d lines\n", acct, perAccount[acct])
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Revenues: %s\n", cli.FormatMoney(revenue))
	fmt.Fprintf(out, "Expenses: %s\n", cli.FormatMoney(expense))
	fmt.Fprintln(out, cli.FormatInfo("Dry run complete - nothing saved"))
}

func printImportResult(out io.Writer, u *model.User, r *ledger.ImportResult) {
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d entries for %s", r.Imported(), u.Email)))
	fmt.Fprintf(out, "  Revenues:   %d\n", r.Revenues)
	fmt.Fprintf(out, "  Expenses:   %d\n", r.Expenses)
	if r.Duplicates > 0 {
		fmt.Fprintf(out, "  Duplicates: %d (already imported)\n", r.Duplicates)
	}
}
