package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var noteColumns = []string{"id", "user_id", "title", "body", "category", "important", "note_date", "created_at"}

// ListNotes returns a user's notes, most recent date first.
func (q *queries) ListNotes(ctx context.Context, userID string) ([]model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select(noteColumns...).From("notes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("note_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list notes: failed to build query: %w", err)
	}

	notes := []model.Note{}
	if err := sqlx.SelectContext(ctx, q.ext, &notes, query, args...); err != nil {
		return nil, mapError(err, "list notes")
	}
	return notes, nil
}

// GetNote returns one note owned by userID.
func (q *queries) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query, args, err := q.builder.Select(noteColumns...).From("notes").
		Where(sq.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("get note: failed to build query: %w", err)
	}

	var n model.Note
	if err := sqlx.GetContext(ctx, q.ext, &n, query, args...); err != nil {
		return nil, mapError(err, "get note")
	}
	return &n, nil
}

// CreateNote inserts a note.
func (q *queries) CreateNote(ctx context.Context, n *model.Note) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNote(n); err != nil {
		return err
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = q.now()
	}
	n.Date = dateOnly(n.Date)

	query, args, err := q.builder.Insert("notes").Columns(noteColumns...).
		Values(n.ID, n.UserID, n.Title, n.Body, n.Category, n.Important, n.Date, n.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create note: failed to build query: %w", err)
	}

	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "create note")
	}
	return nil
}

// UpdateNote rewrites a note owned by n.UserID.
func (q *queries) UpdateNote(ctx context.Context, n *model.Note) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNote(n); err != nil {
		return err
	}
	if err := validateString(n.ID, "id"); err != nil {
		return err
	}
	n.Date = dateOnly(n.Date)

	query, args, err := q.builder.Update("notes").
		Set("title", n.Title).
		Set("body", n.Body).
		Set("category", n.Category).
		Set("important", n.Important).
		Set("note_date", n.Date).
		Where(sq.Eq{"id": n.ID, "user_id": n.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("update note: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "update note")
	}
	return checkAffected(res, "update note")
}

// DeleteNote removes a note owned by userID.
func (q *queries) DeleteNote(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query, args, err := q.builder.Delete("notes").Where(sq.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("delete note: failed to build query: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "delete note")
	}
	return checkAffected(res, "delete note")
}
