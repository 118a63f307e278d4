// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/shopkeep/internal/model"
)

// EntryFilter narrows entry queries. Zero values mean "no constraint".
type EntryFilter struct {
	Start         *time.Time
	End           *time.Time
	CategoryID    string
	PaymentMethod string
	Limit         int
	Offset        int
}

// CategoryFilter narrows category queries.
type CategoryFilter struct {
	BusinessTypeID string
	IDs            []string
	ActiveOnly     bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// User operations
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error

	// Business type operations
	ListBusinessTypes(ctx context.Context, limit int) ([]model.BusinessType, error)
	GetBusinessType(ctx context.Context, id string) (*model.BusinessType, error)
	SaveBusinessType(ctx context.Context, bt *model.BusinessType) error

	// Category operations
	ListCategories(ctx context.Context, kind model.CategoryType, filter CategoryFilter) ([]model.Category, error)
	GetCategory(ctx context.Context, kind model.CategoryType, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, kind model.CategoryType, id string) error

	// Category association operations
	GetActiveCategories(ctx context.Context, userID string) ([]model.ActiveCategory, error)
	DeleteActiveCategories(ctx context.Context, userID string) (int64, error)
	InsertActiveCategories(ctx context.Context, rows []model.ActiveCategory) error
	InsertActiveCategory(ctx context.Context, row *model.ActiveCategory) error

	// Note operations
	ListNotes(ctx context.Context, userID string) ([]model.Note, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	CreateNote(ctx context.Context, note *model.Note) error
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, userID, id string) error

	// Entry operations
	ListEntries(ctx context.Context, kind model.CategoryType, userID string, filter EntryFilter) ([]model.Entry, error)
	GetEntry(ctx context.Context, kind model.CategoryType, userID, id string) (*model.Entry, error)
	CreateEntry(ctx context.Context, entry *model.Entry) error
	UpdateEntry(ctx context.Context, entry *model.Entry) error
	DeleteEntry(ctx context.Context, kind model.CategoryType, userID, id string) error

	// Identity and session operations
	CreateIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentityByID(ctx context.Context, id string) (*model.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	UpdateIdentityPassword(ctx context.Context, id, passwordHash string) error
	DeleteIdentity(ctx context.Context, id string) error
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByIdentity(ctx context.Context, identityID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Database management
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
