package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/jmoiron/sqlx"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 5

// Migration represents a database schema migration.
type Migration struct {
	Up          func(ctx context.Context, tx *sqlx.Tx) error
	Description string
	Version     int
}

// ddl adapts a statement to the connected database. Statements are written
// for SQLite; PostgreSQL gets timezone-aware timestamps.
func ddl(tx *sqlx.Tx, stmt string) string {
	if tx.DriverName() == DriverPostgres {
		stmt = strings.ReplaceAll(stmt, " TIMESTAMP NOT NULL", " TIMESTAMPTZ NOT NULL")
	}
	return stmt
}

func execAll(ctx context.Context, tx *sqlx.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, ddl(tx, stmt)); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Business types, users, identities and sessions",
		Up: func(ctx context.Context, tx *sqlx.Tx) error {
			return execAll(ctx, tx, []string{
				`CREATE TABLE IF NOT EXISTS business_types (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					slug TEXT NOT NULL UNIQUE
				)`,
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					external_id TEXT NOT NULL UNIQUE,
					name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE,
					business_name TEXT NOT NULL DEFAULT '',
					business_type_id TEXT REFERENCES business_types(id),
					is_admin BOOLEAN NOT NULL DEFAULT FALSE,
					plan TEXT NOT NULL DEFAULT 'monthly',
					payment_status TEXT NOT NULL DEFAULT 'active',
					expires_at DATE NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_users_business_type ON users(business_type_id)`,
				`CREATE TABLE IF NOT EXISTS identities (
					id TEXT PRIMARY KEY,
					email TEXT NOT NULL UNIQUE,
					password_hash TEXT NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS sessions (
					token TEXT PRIMARY KEY,
					identity_id TEXT NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
					expires_at TIMESTAMP NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_sessions_identity ON sessions(identity_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Revenue and expense categories with per-user associations",
		Up: func(ctx context.Context, tx *sqlx.Tx) error {
			stmts := make([]string, 0, 6)
			for _, table := range []string{"revenue_categories", "expense_categories"} {
				stmts = append(stmts,
					`CREATE TABLE IF NOT EXISTS `+table+` (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						business_type_id TEXT NOT NULL REFERENCES business_types(id) ON DELETE CASCADE,
						is_active BOOLEAN NOT NULL DEFAULT TRUE,
						created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
						UNIQUE (business_type_id, name)
					)`,
					`CREATE INDEX IF NOT EXISTS idx_`+table+`_business_type ON `+table+`(business_type_id)`,
				)
			}
			stmts = append(stmts,
				`CREATE TABLE IF NOT EXISTS user_active_categories (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					revenue_category_id TEXT REFERENCES revenue_categories(id) ON DELETE CASCADE,
					expense_category_id TEXT REFERENCES expense_categories(id) ON DELETE CASCADE,
					active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CHECK ((revenue_category_id IS NULL) <> (expense_category_id IS NULL))
				)`,
				`CREATE INDEX IF NOT EXISTS idx_user_active_categories_user ON user_active_categories(user_id)`,
			)
			return execAll(ctx, tx, stmts)
		},
	},
	{
		Version:     3,
		Description: "Notes",
		Up: func(ctx context.Context, tx *sqlx.Tx) error {
			return execAll(ctx, tx, []string{
				`CREATE TABLE IF NOT EXISTS notes (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					title TEXT NOT NULL,
					body TEXT NOT NULL DEFAULT '',
					category TEXT,
					important BOOLEAN NOT NULL DEFAULT FALSE,
					note_date DATE NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_notes_user_date ON notes(user_id, note_date)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Revenue and expense entries",
		Up: func(ctx context.Context, tx *sqlx.Tx) error {
			stmts := make([]string, 0, 4)
			for _, kind := range []model.CategoryType{model.CategoryTypeRevenue, model.CategoryTypeExpense} {
				table := entryTables[kind]
				stmts = append(stmts,
					`CREATE TABLE IF NOT EXISTS `+table+` (
						id TEXT PRIMARY KEY,
						user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
						category_id TEXT REFERENCES `+categoryTables[kind]+`(id) ON DELETE SET NULL,
						amount NUMERIC(14,2) NOT NULL,
						entry_date DATE NOT NULL,
						payment_method TEXT NOT NULL DEFAULT '',
						notes TEXT,
						external_ref TEXT,
						created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
						UNIQUE (user_id, external_ref)
					)`,
					`CREATE INDEX IF NOT EXISTS idx_`+table+`_user_date ON `+table+`(user_id, entry_date)`,
				)
			}
			return execAll(ctx, tx, stmts)
		},
	},
	{
		Version:     5,
		Description: "Seed business type catalog",
		Up: func(ctx context.Context, tx *sqlx.Tx) error {
			query := tx.Rebind(`INSERT INTO business_types (id, name, slug) VALUES (?, ?, ?)
				ON CONFLICT (id) DO NOTHING`)
			for _, bt := range model.DefaultBusinessTypes {
				if _, err := tx.ExecContext(ctx, query, bt.ID, bt.Name, bt.Slug); err != nil {
					return fmt.Errorf("failed to seed business type %s: %w", bt.Slug, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTxx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(ctx, tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`),
			migration.Version, migration.Description); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		s.logger.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
