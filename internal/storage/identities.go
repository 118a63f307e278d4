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

var (
	identityColumns = []string{"id", "email", "password_hash", "created_at"}
	sessionColumns  = []string{"token", "identity_id", "expires_at", "created_at"}
)

// CreateIdentity inserts a login identity.
func (q *queries) CreateIdentity(ctx context.Context, id *model.Identity) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("%w: identity", ErrNilParameter)
	}
	if err := validateString(id.Email, "email"); err != nil {
		return err
	}
	if err := validateString(id.PasswordHash, "passwordHash"); err != nil {
		return err
	}

	if id.ID == "" {
		id.ID = uuid.NewString()
	}
	if id.CreatedAt.IsZero() {
		id.CreatedAt = q.now()
	}

	query, args, err := q.builder.Insert("identities").Columns(identityColumns...).
		Values(id.ID, id.Email, id.PasswordHash, id.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("create identity: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "create identity")
	}
	return nil
}

func (q *queries) getIdentity(ctx context.Context, op string, where sq.Sqlizer) (*model.Identity, error) {
	query, args, err := q.builder.Select(identityColumns...).From("identities").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var id model.Identity
	if err := sqlx.GetContext(ctx, q.ext, &id, query, args...); err != nil {
		return nil, mapError(err, op)
	}
	return &id, nil
}

// GetIdentityByID returns an identity by id.
func (q *queries) GetIdentityByID(ctx context.Context, id string) (*model.Identity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return q.getIdentity(ctx, "get identity", sq.Eq{"id": id})
}

// GetIdentityByEmail returns an identity by email address.
func (q *queries) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}
	return q.getIdentity(ctx, "get identity by email", sq.Eq{"email": email})
}

// UpdateIdentityPassword replaces the stored password hash.
func (q *queries) UpdateIdentityPassword(ctx context.Context, id, passwordHash string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateString(passwordHash, "passwordHash"); err != nil {
		return err
	}

	query, args, err := q.builder.Update("identities").Set("password_hash", passwordHash).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("update identity password: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "update identity password")
	}
	return checkAffected(res, "update identity password")
}

// DeleteIdentity removes an identity and its sessions.
func (q *queries) DeleteIdentity(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete("identities").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("delete identity: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "delete identity")
	}
	return checkAffected(res, "delete identity")
}

// CreateSession stores a new session.
func (q *queries) CreateSession(ctx context.Context, s *model.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if err := validateString(s.Token, "token"); err != nil {
		return err
	}
	if err := validateString(s.IdentityID, "identityID"); err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = q.now()
	}
	s.ExpiresAt = s.ExpiresAt.UTC()

	query, args, err := q.builder.Insert("sessions").Columns(sessionColumns...).
		Values(s.Token, s.IdentityID, s.ExpiresAt, s.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("create session: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "create session")
	}
	return nil
}

// GetSession returns the session for token, expired or not.
func (q *queries) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(token, "token"); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select(sessionColumns...).From("sessions").
		Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("get session: failed to build query: %w", err)
	}

	var s model.Session
	if err := sqlx.GetContext(ctx, q.ext, &s, query, args...); err != nil {
		return nil, mapError(err, "get session")
	}
	return &s, nil
}

// DeleteSession revokes a session. Revoking an unknown token is not an error.
func (q *queries) DeleteSession(ctx context.Context, token string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(token, "token"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete("sessions").Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return fmt.Errorf("delete session: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "delete session")
	}
	return nil
}

// DeleteSessionsByIdentity revokes every session of an identity.
func (q *queries) DeleteSessionsByIdentity(ctx context.Context, identityID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(identityID, "identityID"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete("sessions").Where(sq.Eq{"identity_id": identityID}).ToSql()
	if err != nil {
		return fmt.Errorf("delete sessions: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "delete sessions")
	}
	return nil
}

// DeleteExpiredSessions purges sessions that expired before now.
func (q *queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	query, args, err := q.builder.Delete("sessions").Where(sq.LtOrEq{"expires_at": now.UTC()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "delete expired sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: failed to get rows affected: %w", err)
	}
	return n, nil
}
