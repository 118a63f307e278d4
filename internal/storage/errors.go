package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapError converts driver errors into the common sentinel errors so callers
// never depend on a specific database.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, common.ErrDuplicateEntry, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, common.ErrForeignKey, pqErr.Constraint)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w: %v", op, common.ErrDuplicateEntry, liteErr)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w: %v", op, common.ErrForeignKey, liteErr)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// checkAffected turns an UPDATE or DELETE that touched no rows into ErrNotFound.
func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	return nil
}
