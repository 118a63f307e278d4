package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsWriter writes reports to a Google spreadsheet, one tab per section.
type SheetsWriter struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewSheetsWriter creates a writer authenticated with the configured
// service account or OAuth2 refresh token.
func NewSheetsWriter(ctx context.Context, config Config, logger *slog.Logger) (*SheetsWriter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return newSheetsWriter(srv, config, logger), nil
}

func newSheetsWriter(srv *sheets.Service, config Config, logger *slog.Logger) *SheetsWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsWriter{service: srv, config: config, logger: logger}
}

// Write implements Writer.
func (w *SheetsWriter) Write(ctx context.Context, r *Report) error {
	_, err := w.Export(ctx, r)
	return err
}

// Export writes the report and returns the spreadsheet id. Existing tab
// contents are replaced.
func (w *SheetsWriter) Export(ctx context.Context, r *Report) (string, error) {
	w.logger.Info("starting report export",
		"revenues", len(r.Revenues),
		"expenses", len(r.Expenses),
		"period", fmt.Sprintf("%s to %s", r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02")))

	spreadsheetID, tabs, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	if err := w.ensureTabs(ctx, spreadsheetID, tabs); err != nil {
		return "", fmt.Errorf("failed to create tabs: %w", err)
	}

	content := map[string][][]any{
		TabSummary:  SummaryRows(r),
		TabRevenues: RevenueRows(r.Revenues),
		TabExpenses: ExpenseRows(r.Expenses),
	}

	retryOpts := common.RetryOptions{
		Logger:       w.logger,
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for _, tab := range Tabs {
		values := content[tab]
		opts := retryOpts
		opts.Operation = "write " + tab
		err := common.WithRetry(ctx, func() error {
			if err := w.clearTab(ctx, spreadsheetID, tab); err != nil {
				return classify(err)
			}
			return classify(w.writeData(ctx, spreadsheetID, tab, values))
		}, opts)
		if err != nil {
			return "", fmt.Errorf("failed to write %s: %w", tab, err)
		}
	}

	if w.config.EnableFormatting {
		opts := retryOpts
		opts.Operation = "format tabs"
		err = common.WithRetry(ctx, func() error {
			return classify(w.applyFormatting(ctx, spreadsheetID, tabs))
		}, opts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed", "spreadsheet_id", spreadsheetID)
	return spreadsheetID, nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.Credentials() == ServiceAccount {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet returns the spreadsheet id and its existing tabs by
// title.
func (w *SheetsWriter) getOrCreateSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID != "" {
		ss, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, sheetIDs(ss.Sheets), nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
			Locale:   "pt_BR",
		},
	}
	for _, tab := range Tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, sheetIDs(created.Sheets), nil
}

func sheetIDs(list []*sheets.Sheet) map[string]int64 {
	ids := make(map[string]int64, len(list))
	for _, s := range list {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

// ensureTabs adds the tabs missing from tabs and records their ids.
func (w *SheetsWriter) ensureTabs(ctx context.Context, spreadsheetID string, tabs map[string]int64) error {
	var requests []*sheets.Request
	for _, tab := range Tabs {
		if _, ok := tabs[tab]; !ok {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return err
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			tabs[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return nil
}

// classify marks Sheets API errors for retry: rate limits and server errors
// are retried, other client errors are permanent.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	default:
		return err
	}
}

func tabRange(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", tab, cells)
}

func (w *SheetsWriter) clearTab(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tabRange(tab, "A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes values into tab in batches of the configured size.
func (w *SheetsWriter) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, tabRange(tab, fmt.Sprintf("A%d", i+1)), &sheets.ValueRange{
			Values: batch,
		}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func boldRow(sheetID, row int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:       sheetID,
				StartRowIndex: row,
				EndRowIndex:   row + 1,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				},
			},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}

func currencyColumn(sheetID, col int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    1,
				StartColumnIndex: col,
				EndColumnIndex:   col + 1,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{
						Type:    "CURRENCY",
						Pattern: `"R$" #,##0.00`,
					},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}

func freezeHeader(sheetID int64) *sheets.Request {
	return &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}
}

func autoResize(sheetID, columns int64) *sheets.Request {
	return &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   columns,
			},
		},
	}
}

// formatRequests builds the formatting for every tab: bold title and
// headers, currency columns, a frozen header row on the entry tabs.
func formatRequests(tabs map[string]int64) []*sheets.Request {
	summary, revenues, expenses := tabs[TabSummary], tabs[TabRevenues], tabs[TabExpenses]
	return []*sheets.Request{
		boldRow(summary, 0),
		currencyColumn(summary, 2),
		autoResize(summary, 3),

		boldRow(revenues, 0),
		currencyColumn(revenues, 3),
		freezeHeader(revenues),
		autoResize(revenues, 5),

		boldRow(expenses, 0),
		currencyColumn(expenses, 2),
		freezeHeader(expenses),
		autoResize(expenses, 4),
	}
}

func (w *SheetsWriter) applyFormatting(ctx context.Context, spreadsheetID string, tabs map[string]int64) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formatRequests(tabs),
	}).Context(ctx).Do()
	return err
}
