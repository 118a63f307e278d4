// Package catalog manages the business type catalog and the revenue and
// expense categories offered to each business type.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
)

// Service exposes catalog reads and category maintenance.
type Service struct {
	store  service.Storage
	logger *slog.Logger
}

// New creates a catalog service.
func New(store service.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// TypeCategories lists the categories offered to one business type.
type TypeCategories struct {
	BusinessTypeID string           `json:"business_type_id"`
	Revenue        []model.Category `json:"revenue"`
	Expense        []model.Category `json:"expense"`
	TotalRevenue   int              `json:"total_revenue"`
	TotalExpense   int              `json:"total_expense"`
}

// ListBusinessTypes returns up to limit business types; zero means all.
func (s *Service) ListBusinessTypes(ctx context.Context, limit int) ([]model.BusinessType, error) {
	types, err := s.store.ListBusinessTypes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list business types: %w", err)
	}
	return types, nil
}

// CategoriesForType returns the revenue and expense categories of a business
// type, optionally only the active ones.
func (s *Service) CategoriesForType(ctx context.Context, businessTypeID string, activeOnly bool) (*TypeCategories, error) {
	businessTypeID = strings.TrimSpace(businessTypeID)
	if businessTypeID == "" {
		return nil, common.MissingField("type")
	}

	filter := service.CategoryFilter{BusinessTypeID: businessTypeID, ActiveOnly: activeOnly}
	revenue, err := s.store.ListCategories(ctx, model.CategoryTypeRevenue, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue categories: %w", err)
	}
	expense, err := s.store.ListCategories(ctx, model.CategoryTypeExpense, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense categories: %w", err)
	}

	return &TypeCategories{
		BusinessTypeID: businessTypeID,
		Revenue:        revenue,
		Expense:        expense,
		TotalRevenue:   len(revenue),
		TotalExpense:   len(expense),
	}, nil
}

// CreateCategory adds an active category to a business type.
func (s *Service) CreateCategory(ctx context.Context, kind model.CategoryType, businessTypeID, name string) (*model.Category, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: category type %q", common.ErrInvalidInput, kind)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(businessTypeID) == "" {
		return nil, common.MissingField("name", "business_type_id")
	}

	c := &model.Category{
		Name:           strings.TrimSpace(name),
		BusinessTypeID: businessTypeID,
		Type:           kind,
		IsActive:       true,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created", "type", kind, "id", c.ID, "name", c.Name)
	return c, nil
}

// RenameCategory changes a category's name.
func (s *Service) RenameCategory(ctx context.Context, kind model.CategoryType, id, name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.MissingField("name")
	}
	return s.update(ctx, kind, id, func(c *model.Category) {
		c.Name = strings.TrimSpace(name)
	})
}

// SetCategoryActive shows or hides a category from the selection lists.
func (s *Service) SetCategoryActive(ctx context.Context, kind model.CategoryType, id string, active bool) (*model.Category, error) {
	return s.update(ctx, kind, id, func(c *model.Category) {
		c.IsActive = active
	})
}

func (s *Service) update(ctx context.Context, kind model.CategoryType, id string, change func(*model.Category)) (*model.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, common.MissingField("id")
	}

	c, err := s.store.GetCategory(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	change(c)
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Users tracking it lose the association
// and entries filed under it become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, kind model.CategoryType, id string) error {
	if strings.TrimSpace(id) == "" {
		return common.MissingField("id")
	}
	if err := s.store.DeleteCategory(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.Info("category deleted", "type", kind, "id", id)
	return nil
}
