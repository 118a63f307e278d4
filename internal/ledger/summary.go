package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/shopspring/decimal"
)

// Uncategorized labels entries without a category in summaries.
const Uncategorized = "Sem categoria"

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// CategoryTotal is the sum of one category's entries.
type CategoryTotal struct {
	CategoryID *string         `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// SeriesPoint is one bucket of a chart series.
type SeriesPoint struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// Summary aggregates one kind of entry over a period.
type Summary struct {
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Type       model.CategoryType `json:"type"`
	ByCategory []CategoryTotal    `json:"by_category"`
	Monthly    []SeriesPoint      `json:"monthly"`
	Daily      []SeriesPoint      `json:"daily"`
	Total      decimal.Decimal    `json:"total"`
	Count      int                `json:"count"`
}

// Summary totals the user's entries matching f.
func (s *Service) Summary(ctx context.Context, kind model.CategoryType, userID string, f Filter) (*Summary, error) {
	entries, err := s.ListEntries(ctx, kind, userID, f)
	if err != nil {
		return nil, err
	}
	return Summarize(kind, f.Period, entries, s.now()), nil
}

// Summarize aggregates entries: the overall total, a total per category
// (largest first), and totals for each of the six months and seven days
// ending at now. The series only count the given entries, so they reflect
// whatever filter produced them.
func Summarize(kind model.CategoryType, period model.Period, entries []model.Entry, now time.Time) *Summary {
	sum := &Summary{
		Type:       kind,
		Start:      period.Start,
		End:        period.End,
		Total:      decimal.Zero,
		ByCategory: []CategoryTotal{},
		Count:      len(entries),
	}

	byName := make(map[string]*CategoryTotal)
	byMonth := make(map[string]decimal.Decimal)
	byDay := make(map[string]decimal.Decimal)

	for _, e := range entries {
		sum.Total = sum.Total.Add(e.Amount)

		name := Uncategorized
		if e.CategoryName != nil && *e.CategoryName != "" {
			name = *e.CategoryName
		}
		ct, ok := byName[name]
		if !ok {
			ct = &CategoryTotal{Name: name, CategoryID: e.CategoryID, Total: decimal.Zero}
			byName[name] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++

		month := e.Date.Format("2006-01")
		byMonth[month] = byMonth[month].Add(e.Amount)
		day := e.Date.Format("2006-01-02")
		byDay[day] = byDay[day].Add(e.Amount)
	}

	for _, ct := range byName {
		sum.ByCategory = append(sum.ByCategory, *ct)
	}
	sort.Slice(sum.ByCategory, func(i, j int) bool {
		a, b := sum.ByCategory[i], sum.ByCategory[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})

	y, m, d := now.Date()
	for i := 5; i >= 0; i-- {
		first := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		key := first.Format("2006-01")
		sum.Monthly = append(sum.Monthly, SeriesPoint{
			Key:   key,
			Label: monthLabels[first.Month()-1],
			Total: byMonth[key],
		})
	}

	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		sum.Daily = append(sum.Daily, SeriesPoint{
			Key:   key,
			Label: day.Format("02/01"),
			Total: byDay[key],
		})
	}

	return sum
}
