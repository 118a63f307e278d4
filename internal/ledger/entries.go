package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/shopspring/decimal"
)

// Filter narrows an entry listing. A zero Period matches every date.
type Filter struct {
	Period        model.Period
	CategoryID    string
	PaymentMethod string
}

func (f Filter) query() service.EntryFilter {
	q := service.EntryFilter{CategoryID: f.CategoryID, PaymentMethod: f.PaymentMethod}
	if !f.Period.Start.IsZero() {
		start := f.Period.Start
		q.Start = &start
	}
	if !f.Period.End.IsZero() {
		end := f.Period.End
		q.End = &end
	}
	return q
}

// EntryInput is the editable part of an entry. A zero Date means today and
// an empty PaymentMethod on a revenue means cash.
type EntryInput struct {
	Date          time.Time       `json:"date"`
	CategoryID    *string         `json:"category_id"`
	Notes         *string         `json:"notes"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

func validKind(kind model.CategoryType) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: entry type %q", common.ErrInvalidInput, kind)
	}
	return nil
}

// apply validates in and copies it onto e.
func (s *Service) apply(ctx context.Context, e *model.Entry, in EntryInput) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", common.ErrInvalidInput)
	}
	e.Amount = in.Amount.Round(2)

	e.Date = in.Date
	if e.Date.IsZero() {
		e.Date = s.now()
	}

	e.CategoryID = nil
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) != "" {
		id := strings.TrimSpace(*in.CategoryID)
		if _, err := s.store.GetCategory(ctx, e.Type, id); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: unknown %s category %q", common.ErrInvalidInput, e.Type, id)
			}
			return fmt.Errorf("failed to load category: %w", err)
		}
		e.CategoryID = &id
	}

	e.PaymentMethod = ""
	if e.Type == model.CategoryTypeRevenue {
		e.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
		if e.PaymentMethod == "" {
			e.PaymentMethod = model.PaymentCash
		}
		if !model.ValidPaymentMethod(e.PaymentMethod) {
			return fmt.Errorf("%w: unknown payment method %q", common.ErrInvalidInput, e.PaymentMethod)
		}
	}

	e.Notes = nil
	if in.Notes != nil && strings.TrimSpace(*in.Notes) != "" {
		n := strings.TrimSpace(*in.Notes)
		e.Notes = &n
	}
	return nil
}

// ListEntries returns the user's entries of one kind, newest first.
func (s *Service) ListEntries(ctx context.Context, kind model.CategoryType, userID string, f Filter) ([]model.Entry, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, kind, userID, f.query())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", kind, err)
	}
	return entries, nil
}

// CreateEntry records a revenue or expense for userID.
func (s *Service) CreateEntry(ctx context.Context, kind model.CategoryType, userID string, in EntryInput) (*model.Entry, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}

	e := &model.Entry{UserID: userID, Type: kind}
	if err := s.apply(ctx, e, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create %s entry: %w", kind, err)
	}
	return s.reload(ctx, e)
}

// UpdateEntry rewrites an entry owned by userID.
func (s *Service) UpdateEntry(ctx context.Context, kind model.CategoryType, userID, id string, in EntryInput) (*model.Entry, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}

	e, err := s.store.GetEntry(ctx, kind, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s entry: %w", kind, err)
	}
	if err := s.apply(ctx, e, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update %s entry: %w", kind, err)
	}
	return s.reload(ctx, e)
}

// DeleteEntry removes an entry owned by userID.
func (s *Service) DeleteEntry(ctx context.Context, kind model.CategoryType, userID, id string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, kind, userID, id); err != nil {
		return fmt.Errorf("failed to delete %s entry: %w", kind, err)
	}
	return nil
}

// reload reads the entry back so the category name is filled in.
func (s *Service) reload(ctx context.Context, e *model.Entry) (*model.Entry, error) {
	fresh, err := s.store.GetEntry(ctx, e.Type, e.UserID, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s entry: %w", e.Type, err)
	}
	return fresh, nil
}
