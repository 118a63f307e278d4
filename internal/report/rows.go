package report

import (
	"fmt"

	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/shopspring/decimal"
)

// Tab titles of the exported spreadsheet.
const (
	TabSummary  = "Resumo"
	TabRevenues = "Receitas"
	TabExpenses = "Despesas"
)

// Tabs lists the spreadsheet tabs in display order.
var Tabs = []string{TabSummary, TabRevenues, TabExpenses}

const dateLayout = "02/01/2006"

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func categoryName(e model.Entry) string {
	if e.CategoryName == nil || *e.CategoryName == "" {
		return ledger.Uncategorized
	}
	return *e.CategoryName
}

// SummaryRows lays out the Resumo tab: totals followed by the per-category
// breakdown of each kind. Money always lands in column C.
func SummaryRows(r *Report) [][]any {
	title := "Relatório Financeiro"
	if r.User != nil && r.User.BusinessName != "" {
		title = r.User.BusinessName
	}

	values := make([][]any, 0, 14+len(r.Revenue.ByCategory)+len(r.Expense.ByCategory))
	values = append(values,
		[]any{title},
		[]any{"Período", fmt.Sprintf("%s - %s", r.Period.Start.Format(dateLayout), r.Period.End.Format(dateLayout))},
		[]any{},
		[]any{"Receitas", "", amount(r.Revenue.Total)},
		[]any{"Despesas", "", amount(r.Expense.Total)},
		[]any{"Resultado", "", amount(r.Net())},
	)

	for _, section := range []struct {
		title string
		sum   *ledger.Summary
	}{
		{"Receitas por categoria", r.Revenue},
		{"Despesas por categoria", r.Expense},
	} {
		values = append(values,
			[]any{},
			[]any{section.title},
			[]any{"Categoria", "Lançamentos", "Total"},
		)
		for _, ct := range section.sum.ByCategory {
			values = append(values, []any{ct.Name, ct.Count, amount(ct.Total)})
		}
	}

	return values
}

// RevenueRows lays out the Receitas tab.
func RevenueRows(entries []model.Entry) [][]any {
	values := make([][]any, 0, len(entries)+1)
	values = append(values, []any{"Data", "Categoria", "Forma de pagamento", "Valor", "Observações"})
	for _, e := range entries {
		values = append(values, []any{
			e.Date.Format(dateLayout),
			categoryName(e),
			e.PaymentMethod,
			amount(e.Amount),
			optional(e.Notes),
		})
	}
	return values
}

// ExpenseRows lays out the Despesas tab.
func ExpenseRows(entries []model.Entry) [][]any {
	values := make([][]any, 0, len(entries)+1)
	values = append(values, []any{"Data", "Categoria", "Valor", "Observações"})
	for _, e := range entries {
		values = append(values, []any{
			e.Date.Format(dateLayout),
			categoryName(e),
			amount(e.Amount),
			optional(e.Notes),
		})
	}
	return values
}
