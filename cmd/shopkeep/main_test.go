package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/shopkeep/internal/accounts"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/config"
	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/report"
	"github.com/Veraticus/shopkeep/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp opens a seeded application on a fresh database file.
func testApp(t *testing.T) *app {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("database.dsn", filepath.Join(t.TempDir(), "shopkeep.db"))
	v.Set("auth.bcrypt_cost", 4)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := newApp(ctx, cfg, testutil.DiscardLogger(), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	var out bytes.Buffer
	require.NoError(t, runSeed(ctx, a, &out, ""))
	return a
}

func createClient(t *testing.T, a *app, email string) *model.User {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, createUser(context.Background(), a, &out, accounts.NewClient{
		Name:           "Ana",
		Email:          email,
		Password:       "segredo1",
		BusinessName:   "Barbearia da Ana",
		BusinessTypeID: model.BusinessTypeBarbershop,
	}))

	u, err := userByEmail(context.Background(), a, email)
	require.NoError(t, err)
	return u
}

func categoryID(t *testing.T, a *app, kind model.CategoryType, name string) string {
	t.Helper()

	tc, err := a.catalog.CategoriesForType(context.Background(), model.BusinessTypeBarbershop, true)
	require.NoError(t, err)

	list := tc.Revenue
	if kind == model.CategoryTypeExpense {
		list = tc.Expense
	}
	for _, c := range list {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %s %q not found", kind, name)
	return ""
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "shopkeep dev\n", out.String())
}

func TestSeedAndBusinessTypes(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runSeed(ctx, a, &out, ""))
	assert.Contains(t, out.String(), "Categories created: 0")

	out.Reset()
	require.NoError(t, listBusinessTypes(ctx, a, &out))
	assert.Contains(t, out.String(), model.BusinessTypeBarbershop)
	assert.Contains(t, out.String(), "barbearia")

	out.Reset()
	require.NoError(t, listCategories(ctx, a, &out, model.BusinessTypeBarbershop, true))
	assert.Contains(t, out.String(), "Corte e Barba")
	assert.Contains(t, out.String(), "Aluguel")
}

func TestSeed_MissingFile(t *testing.T) {
	a := testApp(t)
	err := runSeed(context.Background(), a, &bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open catalog")
}

func TestUsers(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, listUsers(ctx, a, &out))
	assert.Contains(t, out.String(), "No accounts yet")

	createClient(t, a, "ana@example.com")

	out.Reset()
	require.NoError(t, createUser(ctx, a, &out, accounts.NewClient{
		Name:           "Dona",
		Email:          "dona@example.com",
		Password:       "segredo1",
		BusinessName:   "Shopkeep",
		BusinessTypeID: model.BusinessTypeBarbershop,
		Admin:          true,
	}))
	assert.Contains(t, out.String(), "Created dona@example.com")
	assert.NotContains(t, out.String(), "Plan")

	out.Reset()
	require.NoError(t, listUsers(ctx, a, &out))
	assert.Contains(t, out.String(), "ana@example.com")
	assert.Contains(t, out.String(), "Barbearia da Ana")
	assert.Contains(t, out.String(), "admin")

	require.ErrorIs(t, deleteUser(ctx, a, &out, "dona@example.com"), common.ErrProtectedAccount)

	ana, err := userByEmail(ctx, a, "ana@example.com")
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, deleteUser(ctx, a, &out, ana.ID))
	assert.Contains(t, out.String(), "Deleted ana@example.com")

	_, err = userByEmail(ctx, a, "ana@example.com")
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestReadPassword(t *testing.T) {
	var prompt bytes.Buffer
	p, err := readPassword(strings.NewReader("segredo1\r\n"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, "segredo1", p)
	assert.Equal(t, "Password: ", prompt.String())

	p, err = readPassword(strings.NewReader("semfim"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, "semfim", p)

	_, err = readPassword(strings.NewReader(""), &prompt)
	require.Error(t, err)
}

func TestCategoriesSetAndShow(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	u := createClient(t, a, "ana@example.com")

	haircut := categoryID(t, a, model.CategoryTypeRevenue, "Corte")
	rent := categoryID(t, a, model.CategoryTypeExpense, "Aluguel")

	var out bytes.Buffer
	require.NoError(t, showCategories(ctx, a, &out, u.Email))
	assert.Contains(t, out.String(), "tracks no categories")

	out.Reset()
	sel := model.CategorySelection{Revenue: []string{haircut}, Expense: []string{rent}}
	require.NoError(t, setCategories(ctx, a, &out, "ANA@example.com", sel, false))
	assert.Contains(t, out.String(), "now tracks 2 categories")

	out.Reset()
	require.NoError(t, showCategories(ctx, a, &out, u.Email))
	assert.Contains(t, out.String(), "Corte")
	assert.Contains(t, out.String(), "Aluguel")

	out.Reset()
	sel = model.CategorySelection{Revenue: []string{haircut, "missing"}}
	err := setCategories(ctx, a, &out, u.Email, sel, true)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Saved 1 categories, 1 failed")
	assert.Contains(t, out.String(), "missing")

	err = setCategories(ctx, a, &out, "nobody@example.com", sel, false)
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestExpandFiles(t *testing.T) {
	files, err := expandFiles([]string{"testdata/*.ofx"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "statement.ofx")}, files)

	_, err = expandFiles([]string{"testdata/*.qfx"})
	require.Error(t, err)
}

func TestImportOFX(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	u := createClient(t, a, "ana@example.com")
	files := []string{filepath.Join("testdata", "statement.ofx")}

	var out bytes.Buffer
	require.NoError(t, runImportOFX(ctx, a, &out, u.Email, files, true))
	assert.Contains(t, out.String(), "statement.ofx: 3 lines")
	assert.Contains(t, out.String(), "R$ 230,50")
	assert.Contains(t, out.String(), "R$ 1.200,00")
	assert.Contains(t, out.String(), "Account 12345-6: 3 lines")
	assert.Contains(t, out.String(), "Dry run complete")

	entries, err := a.books.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	out.Reset()
	require.NoError(t, runImportOFX(ctx, a, &out, u.Email, files, false))
	assert.Contains(t, out.String(), "Imported 3 entries")

	out.Reset()
	require.NoError(t, runImportOFX(ctx, a, &out, u.Email, files, false))
	assert.Contains(t, out.String(), "Imported 0 entries")
	assert.Contains(t, out.String(), "Duplicates: 3")

	entries, err = a.books.ListEntries(ctx, model.CategoryTypeRevenue, u.ID, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPeriodFlags(t *testing.T) {
	now := time.Date(2025, time.August, 13, 15, 0, 0, 0, time.UTC)

	p, err := periodFlags{}.resolve(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC), p.End)

	p, err = periodFlags{start: "2025-01-01", end: "2025-03-31"}.resolve(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), p.End)

	_, err = periodFlags{start: "01/01/2025", end: "2025-03-31"}.resolve(now)
	require.Error(t, err)

	_, err = periodFlags{kind: "decade"}.resolve(now)
	require.Error(t, err)
}

func TestReportExport(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	u := createClient(t, a, "ana@example.com")
	require.NoError(t, runImportOFX(ctx, a, &bytes.Buffer{}, u.Email, []string{filepath.Join("testdata", "statement.ofx")}, false))

	w := report.NewMockWriter()
	var out bytes.Buffer
	pf := periodFlags{start: "2025-03-01", end: "2025-03-31"}
	require.NoError(t, runReportExport(ctx, a, &out, w, u.Email, pf))

	require.Equal(t, 1, w.Calls())
	r := w.Reports[0]
	assert.Equal(t, u.ID, r.User.ID)
	assert.Len(t, r.Revenues, 2)
	assert.Len(t, r.Expenses, 1)
	assert.Equal(t, "-969.5", r.Net().String())
	assert.Contains(t, out.String(), "R$ 230,50")
	assert.Contains(t, out.String(), "Report exported")

	w.SetWriteError(errors.New("quota exceeded"))
	err := runReportExport(ctx, a, &out, w, u.Email, pf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestReportAuth_RequiresCredentials(t *testing.T) {
	err := runReportAuth(context.Background(), &report.AuthFlow{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets.client_id")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	a := testApp(t)
	a.cfg.Server.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, a, "127.0.0.1:0") }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
