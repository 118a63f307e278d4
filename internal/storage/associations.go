package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var associationColumns = []string{
	"id", "user_id", "revenue_category_id", "expense_category_id", "active", "created_at",
}

// GetActiveCategories returns the active category associations of a user,
// oldest first.
func (q *queries) GetActiveCategories(ctx context.Context, userID string) ([]model.ActiveCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select(associationColumns...).From("user_active_categories").
		Where(sq.Eq{"user_id": userID, "active": true}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get active categories: failed to build query: %w", err)
	}

	rows := []model.ActiveCategory{}
	if err := sqlx.SelectContext(ctx, q.ext, &rows, query, args...); err != nil {
		return nil, mapError(err, "get active categories")
	}
	return rows, nil
}

// DeleteActiveCategories removes every association of a user and reports how
// many rows went away. Deleting nothing is not an error.
func (q *queries) DeleteActiveCategories(ctx context.Context, userID string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	query, args, err := q.builder.Delete("user_active_categories").
		Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("delete active categories: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "delete active categories")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete active categories: failed to get rows affected: %w", err)
	}
	return n, nil
}

// InsertActiveCategories writes all rows in a single statement, so either all
// of them land or none do.
func (q *queries) InsertActiveCategories(ctx context.Context, rows []model.ActiveCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	b := q.builder.Insert("user_active_categories").Columns(associationColumns...)
	now := q.now()
	for i := range rows {
		if err := validateAssociation(&rows[i]); err != nil {
			return fmt.Errorf("association at index %d: %w", i, err)
		}
		prepareAssociation(&rows[i], now)
		r := rows[i]
		b = b.Values(r.ID, r.UserID, r.RevenueCategoryID, r.ExpenseCategoryID, r.Active, r.CreatedAt)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("insert active categories: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "insert active categories")
	}
	return nil
}

// InsertActiveCategory writes one association row.
func (q *queries) InsertActiveCategory(ctx context.Context, row *model.ActiveCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAssociation(row); err != nil {
		return err
	}
	prepareAssociation(row, q.now())

	query, args, err := q.builder.Insert("user_active_categories").
		Columns(associationColumns...).
		Values(row.ID, row.UserID, row.RevenueCategoryID, row.ExpenseCategoryID, row.Active, row.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("insert active category: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "insert active category")
	}
	return nil
}

func prepareAssociation(r *model.ActiveCategory, now time.Time) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}
