package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var entryTables = map[model.CategoryType]string{
	model.CategoryTypeRevenue: "revenues",
	model.CategoryTypeExpense: "expenses",
}

var entryColumns = []string{
	"id", "user_id", "category_id", "amount", "entry_date", "payment_method", "notes", "external_ref", "created_at",
}

func (q *queries) selectEntries(kind model.CategoryType) sq.SelectBuilder {
	return q.builder.Select(
		"e.id", "e.user_id", "e.category_id", "e.amount", "e.entry_date", "e.payment_method",
		"e.notes", "e.external_ref", "e.created_at", "c.name AS category_name",
	).
		From(entryTables[kind] + " e").
		LeftJoin(categoryTables[kind] + " c ON c.id = e.category_id")
}

// ListEntries returns a user's entries of one kind matching filter, newest first.
func (q *queries) ListEntries(ctx context.Context, kind model.CategoryType, userID string, filter service.EntryFilter) ([]model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	b := q.selectEntries(kind).Where(sq.Eq{"e.user_id": userID})
	if filter.Start != nil {
		b = b.Where(sq.GtOrEq{"e.entry_date": dateOnly(*filter.Start)})
	}
	if filter.End != nil {
		b = b.Where(sq.LtOrEq{"e.entry_date": dateOnly(*filter.End)})
	}
	if filter.CategoryID != "" {
		b = b.Where(sq.Eq{"e.category_id": filter.CategoryID})
	}
	if filter.PaymentMethod != "" {
		b = b.Where(sq.Eq{"e.payment_method": filter.PaymentMethod})
	}
	b = b.OrderBy("e.entry_date DESC", "e.created_at DESC")
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		b = b.Offset(uint64(filter.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("list %s entries: failed to build query: %w", kind, err)
	}

	entries := []model.Entry{}
	if err := sqlx.SelectContext(ctx, q.ext, &entries, query, args...); err != nil {
		return nil, mapError(err, fmt.Sprintf("list %s entries", kind))
	}
	for i := range entries {
		entries[i].Type = kind
	}
	return entries, nil
}

// GetEntry returns one entry owned by userID.
func (q *queries) GetEntry(ctx context.Context, kind model.CategoryType, userID, id string) (*model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query, args, err := q.selectEntries(kind).
		Where(sq.Eq{"e.id": id, "e.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("get %s entry: failed to build query: %w", kind, err)
	}

	var e model.Entry
	if err := sqlx.GetContext(ctx, q.ext, &e, query, args...); err != nil {
		return nil, mapError(err, fmt.Sprintf("get %s entry", kind))
	}
	e.Type = kind
	return &e, nil
}

// CreateEntry inserts an entry. A second entry with the same external
// reference for the same user fails with common.ErrDuplicateEntry.
func (q *queries) CreateEntry(ctx context.Context, e *model.Entry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(e); err != nil {
		return err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = q.now()
	}
	e.Date = dateOnly(e.Date)

	query, args, err := q.builder.Insert(entryTables[e.Type]).Columns(entryColumns...).
		Values(e.ID, e.UserID, e.CategoryID, e.Amount, e.Date, e.PaymentMethod, e.Notes, e.ExternalRef, e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create %s entry: failed to build query: %w", e.Type, err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, fmt.Sprintf("create %s entry", e.Type))
	}
	return nil
}

// UpdateEntry rewrites an entry owned by e.UserID.
func (q *queries) UpdateEntry(ctx context.Context, e *model.Entry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(e); err != nil {
		return err
	}
	if err := validateString(e.ID, "id"); err != nil {
		return err
	}
	e.Date = dateOnly(e.Date)

	query, args, err := q.builder.Update(entryTables[e.Type]).
		Set("category_id", e.CategoryID).
		Set("amount", e.Amount).
		Set("entry_date", e.Date).
		Set("payment_method", e.PaymentMethod).
		Set("notes", e.Notes).
		Where(sq.Eq{"id": e.ID, "user_id": e.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("update %s entry: failed to build query: %w", e.Type, err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, fmt.Sprintf("update %s entry", e.Type))
	}
	return checkAffected(res, fmt.Sprintf("update %s entry", e.Type))
}

// DeleteEntry removes an entry owned by userID.
func (q *queries) DeleteEntry(ctx context.Context, kind model.CategoryType, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKind(kind); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete(entryTables[kind]).
		Where(sq.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("delete %s entry: failed to build query: %w", kind, err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, fmt.Sprintf("delete %s entry", kind))
	}
	return checkAffected(res, fmt.Sprintf("delete %s entry", kind))
}
