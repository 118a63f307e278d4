package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidKind     = fmt.Errorf("%w: category type", common.ErrInvalidInput)
	ErrInvalidUser     = fmt.Errorf("%w: user", common.ErrInvalidInput)
	ErrInvalidCategory = fmt.Errorf("%w: category", common.ErrInvalidInput)
	ErrInvalidLink     = fmt.Errorf("%w: category association", common.ErrInvalidInput)
	ErrInvalidNote     = fmt.Errorf("%w: note", common.ErrInvalidInput)
	ErrInvalidEntry    = fmt.Errorf("%w: entry", common.ErrInvalidInput)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateKind(kind model.CategoryType) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

func validateUser(u *model.User) error {
	if u == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(u.ExternalID) == "" {
		return fmt.Errorf("%w: missing external id", ErrInvalidUser)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidUser)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidUser)
	}
	if u.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: missing expiry", ErrInvalidUser)
	}
	return nil
}

func validateCategory(c *model.Category) error {
	if c == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateKind(c.Type); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if strings.TrimSpace(c.BusinessTypeID) == "" {
		return fmt.Errorf("%w: missing business type", ErrInvalidCategory)
	}
	return nil
}

func validateAssociation(a *model.ActiveCategory) error {
	if a == nil {
		return fmt.Errorf("%w: association", ErrNilParameter)
	}
	if strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidLink)
	}
	if (a.RevenueCategoryID == nil) == (a.ExpenseCategoryID == nil) {
		return fmt.Errorf("%w: exactly one of revenue or expense category must be set", ErrInvalidLink)
	}
	return nil
}

func validateNote(n *model.Note) error {
	if n == nil {
		return fmt.Errorf("%w: note", ErrNilParameter)
	}
	if strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidNote)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidNote)
	}
	if n.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidNote)
	}
	return nil
}

func validateEntry(e *model.Entry) error {
	if e == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if err := validateKind(e.Type); err != nil {
		return err
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidEntry)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}
	return nil
}
