package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/ofx"
	"github.com/Veraticus/shopkeep/internal/testutil"
	"github.com/Veraticus/shopkeep/internal/testutil/categories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 13 August 2025.
var fixedNow = time.Date(2025, time.August, 13, 15, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func setup(t *testing.T) (*Service, *testutil.TestDB, categories.Categories) {
	t.Helper()
	db, cats := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithFixture(categories.FixtureBarbershop)
	})
	svc := New(db.Storage, testutil.DiscardLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, db, cats
}

func TestNotes(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()
	ana := db.CreateUser("ana@example.com")
	bia := db.CreateUser("bia@example.com")

	_, err := svc.CreateNote(ctx, ana.ID, NoteInput{Title: " "})
	assert.ErrorIs(t, err, common.ErrMissingField)

	older, err := svc.CreateNote(ctx, ana.ID, NoteInput{Title: "Fornecedor", Body: "Ligar segunda", Date: day(time.August, 1)})
	require.NoError(t, err)
	today, err := svc.CreateNote(ctx, ana.ID, NoteInput{Title: "Promoção", Category: strPtr(" marketing "), Important: true})
	require.NoError(t, err)
	assert.Equal(t, day(time.August, 13), today.Date)
	require.NotNil(t, today.Category)
	assert.Equal(t, "marketing", *today.Category)

	notes, err := svc.ListNotes(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, today.ID, notes[0].ID)
	assert.Equal(t, older.ID, notes[1].ID)

	updated, err := svc.UpdateNote(ctx, ana.ID, older.ID, NoteInput{Title: "Fornecedor novo", Date: day(time.August, 2)})
	require.NoError(t, err)
	assert.Equal(t, "Fornecedor novo", updated.Title)
	assert.Nil(t, updated.Category)

	// Another user's note is invisible.
	_, err = svc.UpdateNote(ctx, bia.ID, older.ID, NoteInput{Title: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteNote(ctx, bia.ID, older.ID), common.ErrNotFound)

	require.NoError(t, svc.DeleteNote(ctx, ana.ID, older.ID))
	notes, err = svc.ListNotes(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestCreateEntry(t *testing.T) {
	svc, db, cats := setup(t)
	ctx := context.Background()
	u := db.CreateUser("ana@example.com")
	haircut := cats.MustFind(t, model.CategoryTypeRevenue, categories.CategoryHaircut)

	e, err := svc.CreateEntry(ctx, model.CategoryTypeRevenue, u.ID, EntryInput{
		Amount:     money("35.005"),
		CategoryID: &haircut.ID,
	})
	require.NoError(t, err)
	assert.True(t, money("35.01").Equal(e.Amount))
	assert.Equal(t, day(time.August, 13), e.Date)
	assert.Equal(t, model.PaymentCash, e.PaymentMethod)
	require.NotNil(t, e.CategoryName)
	assert.Equal(t, "Corte", *e.CategoryName)

	expense, err := svc.CreateEntry(ctx, model.CategoryTypeExpense, u.ID, EntryInput{
		Amount:        money("1200"),
		PaymentMethod: model.PaymentPix,
		Notes:         strPtr("  aluguel de agosto "),
	})
	require.NoError(t, err)
	assert.Empty(t, expense.PaymentMethod)
	assert.Nil(t, expense.CategoryID)
	require.NotNil(t, expense.Notes)
	assert.Equal(t, "aluguel de agosto", *expense.Notes)
}

func TestCreateEntry_Validation(t *testing.T) {
	svc, db, cats := setup(t)
	ctx := context.Background()
	u := db.CreateUser("ana@example.com")
	rent := cats.MustFind(t, model.CategoryTypeExpense, categories.CategoryRent)

	tests := []struct {
		name string
		kind model.CategoryType
		in   EntryInput
	}{
		{name: "zero amount", kind: model.CategoryTypeRevenue, in: EntryInput{}},
		{name: "negative amount", kind: model.CategoryTypeRevenue, in: EntryInput{Amount: money("-5")}},
		{name: "unknown payment method", kind: model.CategoryTypeRevenue, in: EntryInput{Amount: money("5"), PaymentMethod: "cheque"}},
		{name: "category of the other kind", kind: model.CategoryTypeRevenue, in: EntryInput{Amount: money("5"), CategoryID: &rent.ID}},
		{name: "unknown kind", kind: "transfer", in: EntryInput{Amount: money("5")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(ctx, tt.kind, u.ID, tt.in)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	svc, db, cats := setup(t)
	ctx := context.Background()
	ana := db.CreateUser("ana@example.com")
	bia := db.CreateUser("bia@example.com")
	beard := cats.MustFind(t, model.CategoryTypeRevenue, categories.CategoryBeard)

	e, err := svc.CreateEntry(ctx, model.CategoryTypeRevenue, ana.ID, EntryInput{Amount: money("20")})
	require.NoError(t, err)

	updated, err := svc.UpdateEntry(ctx, model.CategoryTypeRevenue, ana.ID, e.ID, EntryInput{
		Amount:        money("25"),
		Date:          day(time.August, 10),
		CategoryID:    &beard.ID,
		PaymentMethod: model.PaymentDebit,
	})
	require.NoError(t, err)
	assert.True(t, money("25").Equal(updated.Amount))
	assert.Equal(t, day(time.August, 10), updated.Date)
	assert.Equal(t, "Barba", *updated.CategoryName)
	assert.Equal(t, model.PaymentDebit, updated.PaymentMethod)

	_, err = svc.UpdateEntry(ctx, model.CategoryTypeRevenue, bia.ID, e.ID, EntryInput{Amount: money("1")})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEntry(ctx, model.CategoryTypeRevenue, bia.ID, e.ID), common.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEntry(ctx, model.CategoryTypeExpense, ana.ID, e.ID), common.ErrNotFound)

	require.NoError(t, svc.DeleteEntry(ctx, model.CategoryTypeRevenue, ana.ID, e.ID))
	entries, err := svc.ListEntries(ctx, model.CategoryTypeRevenue, ana.ID, Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListEntries_Filter(t *testing.T) {
	svc, db, cats := setup(t)
	ctx := context.Background()
	u := db.CreateUser("ana@example.com")
	haircut := cats.MustFind(t, model.CategoryTypeRevenue, categories.CategoryHaircut)

	for _, in := range []EntryInput{
		{Amount: money("30"), Date: day(time.July, 31), CategoryID: &haircut.ID},
		{Amount: money("35"), Date: day(time.August, 1), CategoryID: &haircut.ID, PaymentMethod: model.PaymentPix},
		{Amount: money("15"), Date: day(time.August, 12)},
		{Amount: money("40"), Date: day(time.August, 31), CategoryID: &haircut.ID},
	} {
		_, err := svc.CreateEntry(ctx, model.CategoryTypeRevenue, u.ID, in)
		require.NoError(t, err)
	}

	month, err := model.NewPeriod(model.PeriodMonth, fixedNow, time.Time{}, time.Time{})
	require.NoError(t, err)

	inMonth, err := svc.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, Filter{Period: month})
	require.NoError(t, err)
	require.Len(t, inMonth, 3)
	assert.Equal(t, day(time.August, 31), inMonth[0].Date)
	assert.Equal(t, day(time.August, 1), inMonth[2].Date)

	byCategory, err := svc.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, Filter{Period: month, CategoryID: haircut.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byMethod, err := svc.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, Filter{PaymentMethod: model.PaymentPix})
	require.NoError(t, err)
	assert.Len(t, byMethod, 1)

	all, err := svc.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSummarize(t *testing.T) {
	corte := "Corte"
	barba := "Barba"
	entries := []model.Entry{
		{Amount: money("30"), Date: day(time.August, 13), CategoryName: &corte},
		{Amount: money("35"), Date: day(time.August, 7), CategoryName: &corte},
		{Amount: money("20"), Date: day(time.August, 12), CategoryName: &barba},
		{Amount: money("15"), Date: day(time.June, 2)},
		{Amount: money("99"), Date: day(time.January, 5)},
	}

	sum := Summarize(model.CategoryTypeRevenue, model.Period{}, entries, fixedNow)

	assert.True(t, money("199").Equal(sum.Total))
	assert.Equal(t, 5, sum.Count)

	require.Len(t, sum.ByCategory, 3)
	assert.Equal(t, Uncategorized, sum.ByCategory[0].Name)
	assert.True(t, money("114").Equal(sum.ByCategory[0].Total))
	assert.Equal(t, "Corte", sum.ByCategory[1].Name)
	assert.True(t, money("65").Equal(sum.ByCategory[1].Total))
	assert.Equal(t, 2, sum.ByCategory[1].Count)
	assert.Equal(t, "Barba", sum.ByCategory[2].Name)

	require.Len(t, sum.Monthly, 6)
	assert.Equal(t, "2025-03", sum.Monthly[0].Key)
	assert.Equal(t, "Mar", sum.Monthly[0].Label)
	assert.Equal(t, "2025-08", sum.Monthly[5].Key)
	assert.Equal(t, "Ago", sum.Monthly[5].Label)
	assert.True(t, money("85").Equal(sum.Monthly[5].Total))
	assert.True(t, money("15").Equal(sum.Monthly[3].Total))
	assert.True(t, sum.Monthly[0].Total.IsZero())

	require.Len(t, sum.Daily, 7)
	assert.Equal(t, "2025-08-07", sum.Daily[0].Key)
	assert.Equal(t, "07/08", sum.Daily[0].Label)
	assert.True(t, money("35").Equal(sum.Daily[0].Total))
	assert.Equal(t, "13/08", sum.Daily[6].Label)
	assert.True(t, money("30").Equal(sum.Daily[6].Total))
	assert.True(t, money("20").Equal(sum.Daily[5].Total))
}

func TestSummarize_MonthsCrossYear(t *testing.T) {
	sum := Summarize(model.CategoryTypeExpense, model.Period{}, nil, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-09", sum.Monthly[0].Key)
	assert.Equal(t, "Set", sum.Monthly[0].Label)
	assert.True(t, sum.Total.IsZero())
	assert.Empty(t, sum.ByCategory)
}

func TestSummary(t *testing.T) {
	svc, db, cats := setup(t)
	ctx := context.Background()
	u := db.CreateUser("ana@example.com")
	rent := cats.MustFind(t, model.CategoryTypeExpense, categories.CategoryRent)

	_, err := svc.CreateEntry(ctx, model.CategoryTypeExpense, u.ID, EntryInput{Amount: money("1200"), Date: day(time.August, 5), CategoryID: &rent.ID})
	require.NoError(t, err)
	_, err = svc.CreateEntry(ctx, model.CategoryTypeExpense, u.ID, EntryInput{Amount: money("80.50"), Date: day(time.August, 9)})
	require.NoError(t, err)
	_, err = svc.CreateEntry(ctx, model.CategoryTypeExpense, u.ID, EntryInput{Amount: money("500"), Date: day(time.July, 5)})
	require.NoError(t, err)

	month, err := model.NewPeriod(model.PeriodMonth, fixedNow, time.Time{}, time.Time{})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, model.CategoryTypeExpense, u.ID, Filter{Period: month})
	require.NoError(t, err)
	assert.True(t, money("1280.50").Equal(sum.Total))
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, "Aluguel", sum.ByCategory[0].Name)
	assert.Equal(t, Uncategorized, sum.ByCategory[1].Name)
	assert.Equal(t, day(time.August, 1), sum.Start)
}

func TestImport(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()
	u := db.CreateUser("ana@example.com")

	lines := []ofx.Line{
		{AccountID: "acct", FitID: "1", Date: day(time.August, 1), Amount: money("150"), Type: model.CategoryTypeRevenue, Description: "PIX JOAO"},
		{AccountID: "acct", FitID: "2", Date: day(time.August, 2), Amount: money("60"), Type: model.CategoryTypeExpense, Description: "ENERGISA"},
	}

	calls := 0
	res, err := svc.Import(ctx, u.ID, lines, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 1, res.Revenues)
	assert.Equal(t, 1, res.Expenses)
	assert.Equal(t, 2, res.Imported())
	assert.Equal(t, 2, calls)

	again, err := svc.Import(ctx, u.ID, lines, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported())
	assert.Equal(t, 2, again.Duplicates)

	revenues, err := svc.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, Filter{})
	require.NoError(t, err)
	require.Len(t, revenues, 1)
	assert.Equal(t, model.PaymentPix, revenues[0].PaymentMethod)
	assert.Nil(t, revenues[0].CategoryName)
}
