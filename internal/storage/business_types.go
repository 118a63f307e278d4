package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ListBusinessTypes returns the catalog ordered by name. A limit of zero
// or less returns everything.
func (q *queries) ListBusinessTypes(ctx context.Context, limit int) ([]model.BusinessType, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	b := q.builder.Select("id", "name", "slug").From("business_types").OrderBy("name")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("list business types: failed to build query: %w", err)
	}

	types := []model.BusinessType{}
	if err := sqlx.SelectContext(ctx, q.ext, &types, query, args...); err != nil {
		return nil, mapError(err, "list business types")
	}
	return types, nil
}

// GetBusinessType returns a single business type.
func (q *queries) GetBusinessType(ctx context.Context, id string) (*model.BusinessType, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select("id", "name", "slug").From("business_types").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("get business type: failed to build query: %w", err)
	}

	var bt model.BusinessType
	if err := sqlx.GetContext(ctx, q.ext, &bt, query, args...); err != nil {
		return nil, mapError(err, "get business type")
	}
	return &bt, nil
}

// SaveBusinessType inserts a business type or updates the name and slug of
// an existing one.
func (q *queries) SaveBusinessType(ctx context.Context, bt *model.BusinessType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if bt == nil {
		return fmt.Errorf("%w: business type", ErrNilParameter)
	}
	if err := validateString(bt.Name, "name"); err != nil {
		return err
	}
	if err := validateString(bt.Slug, "slug"); err != nil {
		return err
	}
	if bt.ID == "" {
		bt.ID = uuid.NewString()
	}

	query, args, err := q.builder.Insert("business_types").
		Columns("id", "name", "slug").
		Values(bt.ID, bt.Name, bt.Slug).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = excluded.name, slug = excluded.slug").
		ToSql()
	if err != nil {
		return fmt.Errorf("save business type: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "save business type")
	}
	return nil
}
