// Package testutil provides test utilities for shopkeep: an isolated
// in-memory database per test plus helpers to seed users and categories.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/Veraticus/shopkeep/internal/storage"
	"github.com/Veraticus/shopkeep/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLStorage
	t       *testing.T
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB creates a new in-memory test database with migrations applied.
// The business type catalog is seeded by the migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Options{
		Driver: storage.DriverSQLite,
		DSN:    ":memory:",
	}, DiscardLogger())
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SetupTestDBWithBuilder creates a test database and seeds categories from
// the configured builder.
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) (*TestDB, categories.Categories) {
	t.Helper()

	db := SetupTestDB(t)
	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	cats, err := builder.Build(context.Background(), db.Storage)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}
	return db, cats
}

// UserOption customizes a seeded user.
type UserOption func(*model.User)

// AsAdmin marks the seeded user as an administrator.
func AsAdmin() UserOption {
	return func(u *model.User) {
		u.IsAdmin = true
		u.BusinessTypeID = ""
	}
}

// WithBusinessType sets the seeded user's business type.
func WithBusinessType(id string) UserOption {
	return func(u *model.User) {
		u.BusinessTypeID = id
	}
}

// WithExternalID overrides the seeded user's external identity id.
func WithExternalID(id string) UserOption {
	return func(u *model.User) {
		u.ExternalID = id
	}
}

// CreateUser inserts a barbershop client with the given email.
func (db *TestDB) CreateUser(email string, opts ...UserOption) *model.User {
	db.t.Helper()

	u := &model.User{
		ExternalID:     "ext-" + email,
		Name:           "Cliente " + email,
		Email:          email,
		BusinessName:   "Negócio de " + email,
		BusinessTypeID: model.BusinessTypeBarbershop,
		Plan:           model.PlanMonthly,
		PaymentStatus:  model.PaymentActive,
		ExpiresAt:      time.Now().AddDate(0, 1, 0),
	}
	for _, opt := range opts {
		opt(u)
	}

	if err := db.Storage.CreateUser(context.Background(), u); err != nil {
		db.t.Fatalf("failed to seed user %q: %v", email, err)
	}
	return u
}

// AssociationCount returns how many category associations a user has.
func (db *TestDB) AssociationCount(userID string) int {
	db.t.Helper()

	rows, err := db.Storage.GetActiveCategories(context.Background(), userID)
	if err != nil {
		db.t.Fatalf("failed to load associations: %v", err)
	}
	return len(rows)
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
