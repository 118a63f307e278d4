package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{
	"id", "external_id", "name", "email", "business_name",
	"COALESCE(business_type_id, '') AS business_type_id",
	"is_admin", "plan", "payment_status", "expires_at", "created_at",
}

func (q *queries) getUser(ctx context.Context, op string, where sq.Sqlizer) (*model.User, error) {
	query, args, err := q.builder.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var u model.User
	if err := sqlx.GetContext(ctx, q.ext, &u, query, args...); err != nil {
		return nil, mapError(err, op)
	}
	return &u, nil
}

// GetUserByID returns the user whose primary key is id.
func (q *queries) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return q.getUser(ctx, "get user by id", sq.Eq{"id": id})
}

// GetUserByExternalID returns the user bound to an auth identity.
func (q *queries) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}
	return q.getUser(ctx, "get user by external id", sq.Eq{"external_id": externalID})
}

// GetUserByEmail returns the user with the given email address.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}
	return q.getUser(ctx, "get user by email", sq.Eq{"email": email})
}

// ListUsers returns every user, newest first.
func (q *queries) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select(userColumns...).From("users").
		OrderBy("created_at DESC", "name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("list users: failed to build query: %w", err)
	}

	users := []model.User{}
	if err := sqlx.SelectContext(ctx, q.ext, &users, query, args...); err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

// CreateUser inserts a user, assigning an id and creation time when unset.
func (q *queries) CreateUser(ctx context.Context, u *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(u); err != nil {
		return err
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = q.now()
	}
	if u.Plan == "" {
		u.Plan = model.PlanMonthly
	}
	if u.PaymentStatus == "" {
		u.PaymentStatus = model.PaymentActive
	}
	u.ExpiresAt = dateOnly(u.ExpiresAt)

	query, args, err := q.builder.Insert("users").
		Columns("id", "external_id", "name", "email", "business_name", "business_type_id",
			"is_admin", "plan", "payment_status", "expires_at", "created_at").
		Values(u.ID, u.ExternalID, u.Name, u.Email, u.BusinessName, nullable(u.BusinessTypeID),
			u.IsAdmin, string(u.Plan), string(u.PaymentStatus), u.ExpiresAt, u.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create user: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "create user")
	}
	return nil
}

// DeleteUser removes the user row. Notes, entries and category associations
// go with it through ON DELETE CASCADE.
func (q *queries) DeleteUser(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("delete user: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "delete user")
	}
	return checkAffected(res, "delete user")
}
