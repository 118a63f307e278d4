package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var categoryTables = map[model.CategoryType]string{
	model.CategoryTypeRevenue: "revenue_categories",
	model.CategoryTypeExpense: "expense_categories",
}

var categoryColumns = []string{"id", "name", "business_type_id", "is_active", "created_at"}

// ListCategories returns categories of one kind matching filter, ordered by name.
func (q *queries) ListCategories(ctx context.Context, kind model.CategoryType, filter service.CategoryFilter) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	b := q.builder.Select(categoryColumns...).From(categoryTables[kind]).OrderBy("name")
	if filter.BusinessTypeID != "" {
		b = b.Where(sq.Eq{"business_type_id": filter.BusinessTypeID})
	}
	if filter.ActiveOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}
	if filter.IDs != nil {
		b = b.Where(sq.Eq{"id": filter.IDs})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("list %s categories: failed to build query: %w", kind, err)
	}

	categories := []model.Category{}
	if err := sqlx.SelectContext(ctx, q.ext, &categories, query, args...); err != nil {
		return nil, mapError(err, fmt.Sprintf("list %s categories", kind))
	}
	for i := range categories {
		categories[i].Type = kind
	}
	return categories, nil
}

// GetCategory returns a single category of the given kind.
func (q *queries) GetCategory(ctx context.Context, kind model.CategoryType, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select(categoryColumns...).From(categoryTables[kind]).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("get %s category: failed to build query: %w", kind, err)
	}

	var c model.Category
	if err := sqlx.GetContext(ctx, q.ext, &c, query, args...); err != nil {
		return nil, mapError(err, fmt.Sprintf("get %s category", kind))
	}
	c.Type = kind
	return &c, nil
}

// CreateCategory inserts a category into the table for its kind.
func (q *queries) CreateCategory(ctx context.Context, c *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(c); err != nil {
		return err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = q.now()
	}
	c.Name = strings.TrimSpace(c.Name)

	query, args, err := q.builder.Insert(categoryTables[c.Type]).
		Columns(categoryColumns...).
		Values(c.ID, c.Name, c.BusinessTypeID, c.IsActive, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create %s category: failed to build query: %w", c.Type, err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, fmt.Sprintf("create %s category", c.Type))
	}
	return nil
}

// UpdateCategory saves the name and active flag of an existing category.
func (q *queries) UpdateCategory(ctx context.Context, c *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(c); err != nil {
		return err
	}
	if err := validateString(c.ID, "id"); err != nil {
		return err
	}

	query, args, err := q.builder.Update(categoryTables[c.Type]).
		Set("name", strings.TrimSpace(c.Name)).
		Set("is_active", c.IsActive).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("update %s category: failed to build query: %w", c.Type, err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, fmt.Sprintf("update %s category", c.Type))
	}
	return checkAffected(res, fmt.Sprintf("update %s category", c.Type))
}

// DeleteCategory removes a category. Associations pointing at it are removed
// and entries filed under it become uncategorized.
func (q *queries) DeleteCategory(ctx context.Context, kind model.CategoryType, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKind(kind); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete(categoryTables[kind]).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("delete %s category: failed to build query: %w", kind, err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, fmt.Sprintf("delete %s category", kind))
	}
	return checkAffected(res, fmt.Sprintf("delete %s category", kind))
}
