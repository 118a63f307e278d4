package report

import (
	"context"
	"fmt"

	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/shopspring/decimal"
)

// Report is everything exported for one user and period.
type Report struct {
	User     *model.User
	Period   model.Period
	Revenues []model.Entry
	Expenses []model.Entry
	Revenue  *ledger.Summary
	Expense  *ledger.Summary
}

// Net is revenue minus expenses.
func (r *Report) Net() decimal.Decimal {
	return r.Revenue.Total.Sub(r.Expense.Total)
}

// Writer sends a report somewhere.
type Writer interface {
	Write(ctx context.Context, r *Report) error
}

// Collect gathers the user's entries and summaries for period.
func Collect(ctx context.Context, books *ledger.Service, u *model.User, period model.Period) (*Report, error) {
	r := &Report{User: u, Period: period}
	f := ledger.Filter{Period: period}

	var err error
	if r.Revenues, err = books.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, f); err != nil {
		return nil, fmt.Errorf("failed to collect revenues: %w", err)
	}
	if r.Expenses, err = books.ListEntries(ctx, model.CategoryTypeExpense, u.ID, f); err != nil {
		return nil, fmt.Errorf("failed to collect expenses: %w", err)
	}

	now := books.Now()
	r.Revenue = ledger.Summarize(model.CategoryTypeRevenue, period, r.Revenues, now)
	r.Expense = ledger.Summarize(model.CategoryTypeExpense, period, r.Expenses, now)
	return r, nil
}
