package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/cli"
	"github.com/Veraticus/shopkeep/internal/config"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newReportWriter opens the spreadsheet writer for report export.
var newReportWriter = func(ctx context.Context, cfg *report.Config, logger *slog.Logger) (report.Writer, error) {
	return report.NewSheetsWriter(ctx, *cfg, logger)
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a client's books to Google Sheets",
	}

	cmd.AddCommand(reportExportCmd())
	cmd.AddCommand(reportAuthCmd())

	return cmd
}

// periodFlags are the flags selecting a reporting window.
type periodFlags struct {
	kind  string
	start string
	end   string
}

func (p periodFlags) resolve(now time.Time) (model.Period, error) {
	var start, end time.Time
	var err error
	if p.start != "" {
		if start, err = time.Parse("2006-01-02", p.start); err != nil {
			return model.Period{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if p.end != "" {
		if end, err = time.Parse("2006-01-02", p.end); err != nil {
			return model.Period{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	kind := model.PeriodKind(strings.TrimSpace(p.kind))
	if kind == "" && (p.start != "" || p.end != "") {
		kind = model.PeriodCustom
	}
	return model.NewPeriod(kind, now, start, end)
}

func reportExportCmd() *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "export <email>",
		Short: "Export revenues, expenses and totals for a period",
		Long: `Write a summary tab and the revenue and expense entries of one client to a
Google Sheets spreadsheet. The spreadsheet is created when sheets.spreadsheet_id
is not configured.

Examples:
  # Current month
  shopkeep report export ana@example.com

  # A custom range
  shopkeep report export ana@example.com --start 2025-01-01 --end 2025-03-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("google sheets is not configured: %w", err)
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				w, err := newReportWriter(ctx, cfg, a.logger)
				if err != nil {
					return err
				}
				return runReportExport(ctx, a, cmd.OutOrStdout(), w, args[0], pf)
			})
		},
	}

	cmd.Flags().StringVar(&pf.kind, "period", "", "period (today, week, month, quarter, year, custom)")
	cmd.Flags().StringVar(&pf.start, "start", "", "first day of a custom period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&pf.end, "end", "", "last day of a custom period (YYYY-MM-DD)")

	return cmd
}

func runReportExport(ctx context.Context, a *app, out io.Writer, w report.Writer, email string, pf periodFlags) error {
	u, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}

	period, err := pf.resolve(a.books.Now())
	if err != nil {
		return err
	}

	r, err := report.Collect(ctx, a.books, u, period)
	if err != nil {
		return err
	}

	location, err := exportReport(ctx, w, r)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.RenderBox(u.BusinessName, strings.Join([]string{
		fmt.Sprintf("Período:  %s a %s", period.Start.Format("02/01/2006"), period.End.Format("02/01/2006")),
		fmt.Sprintf("Receitas: %s (%d)", cli.FormatMoney(r.Revenue.Total), r.Revenue.Count),
		fmt.Sprintf("Despesas: %s (%d)", cli.FormatMoney(r.Expense.Total), r.Expense.Count),
		fmt.Sprintf("Resultado: %s", cli.FormatMoney(r.Net())),
	}, "\n")))
	if location != "" {
		fmt.Fprintln(out, cli.FormatSuccess("Exported to https://docs.google.com/spreadsheets/d/"+location))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess("Report exported"))
	}
	return nil
}

// exportReport writes r and returns the spreadsheet id when the writer
// reports one.
func exportReport(ctx context.Context, w report.Writer, r *report.Report) (string, error) {
	if sw, ok := w.(*report.SheetsWriter); ok {
		return sw.Export(ctx, r)
	}
	return "", w.Write(ctx, r)
}

func reportAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize spreadsheet exports with a Google account",
		Long: `Run the OAuth2 consent flow in the browser and print the refresh token to put
in sheets.refresh_token. Needs sheets.client_id and sheets.client_secret.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			flow := &report.AuthFlow{
				ClientID:     viper.GetString("sheets.client_id"),
				ClientSecret: viper.GetString("sheets.client_secret"),
				Addr:         addr,
				Logger:       slog.Default(),
			}
			return runReportAuth(cmd.Context(), flow, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("addr", "localhost:8085", "local address for the OAuth callback")

	return cmd
}

func runReportAuth(ctx context.Context, flow *report.AuthFlow, out io.Writer) error {
	if flow.ClientID == "" || flow.ClientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in the config")
	}

	token, err := flow.Run(ctx, func(authURL string) {
		fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize shopkeep:"))
		fmt.Fprintln(out, authURL)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized. Add this to your config:"))
	fmt.Fprintf(out, "sheets:\n  refresh_token: %q\n", token.RefreshToken)
	return nil
}
