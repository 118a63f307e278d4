package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/Veraticus/shopkeep/internal/storage"
)

// ReplaceResult reports the outcome of an all-or-nothing replacement.
type ReplaceResult struct {
	UserID   string `json:"user_id"`
	Removed  int    `json:"removed"`
	Inserted int    `json:"inserted"`
	Final    int    `json:"final"`
}

// RowFailure describes one association that could not be written.
type RowFailure struct {
	CategoryID string             `json:"category_id"`
	Type       model.CategoryType `json:"type"`
	Error      string             `json:"error"`
}

// EachReplaceResult reports the outcome of a row-by-row replacement.
// Verified is nil when the final count could not be read back.
type EachReplaceResult struct {
	Verified *int         `json:"verified"`
	UserID   string       `json:"user_id"`
	Failures []RowFailure `json:"failures"`
	Saved    int          `json:"saved"`
	Failed   int          `json:"failed"`
}

// ActiveCategories lists the categories a user currently tracks.
type ActiveCategories struct {
	UserID  string           `json:"user_id"`
	Revenue []model.Category `json:"revenue"`
	Expense []model.Category `json:"expense"`
	Total   int              `json:"total"`
}

// EditableCategories is everything needed to edit a user's selection: the
// categories offered for the user's business type and the ids currently
// selected.
type EditableCategories struct {
	Active         model.CategorySelection `json:"active"`
	UserID         string                  `json:"user_id"`
	BusinessTypeID string                  `json:"business_type_id"`
	Revenue        []model.Category        `json:"revenue"`
	Expense        []model.Category        `json:"expense"`
}

// CategoryReplacer replaces the set of categories a user tracks. A
// replacement always deletes the whole previous set and inserts the new one.
type CategoryReplacer struct {
	store    service.Storage
	resolver *Resolver
	logger   *slog.Logger
}

// NewCategoryReplacer creates a replacer backed by store.
func NewCategoryReplacer(store service.Storage, logger *slog.Logger) *CategoryReplacer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryReplacer{
		store:    store,
		resolver: NewResolver(store, logger),
		logger:   logger,
	}
}

// ReplaceCategories swaps the user's selection in a single transaction. If
// any step fails the previous selection is left untouched.
func (c *CategoryReplacer) ReplaceCategories(ctx context.Context, identifier string, sel model.CategorySelection) (*ReplaceResult, error) {
	u, err := c.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	rows := normalizeSelection(sel).Associations(u.ID)
	result := &ReplaceResult{UserID: u.ID}

	err = storage.WithTx(ctx, c.store, func(tx service.Transaction) error {
		removed, err := tx.DeleteActiveCategories(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}
		if err := tx.InsertActiveCategories(ctx, rows); err != nil {
			return fmt.Errorf("failed to save categories: %w", err)
		}
		final, err := tx.GetActiveCategories(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to verify categories: %w", err)
		}

		result.Removed = int(removed)
		result.Inserted = len(rows)
		result.Final = len(final)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("categories replaced",
		"user_id", u.ID,
		"removed", result.Removed,
		"inserted", result.Inserted,
		"final", result.Final)
	return result, nil
}

// ReplaceCategoriesEach clears the selection and writes each row on its
// own, collecting per-row failures instead of stopping. A failure to clear
// is logged and the inserts still run, so the result may be a mix of old
// and new rows.
func (c *CategoryReplacer) ReplaceCategoriesEach(ctx context.Context, identifier string, sel model.CategorySelection) (*EachReplaceResult, error) {
	u, err := c.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	result := &EachReplaceResult{UserID: u.ID, Failures: []RowFailure{}}

	if removed, err := c.store.DeleteActiveCategories(ctx, u.ID); err != nil {
		c.logger.Warn("failed to clear categories, inserting anyway", "user_id", u.ID, "error", err)
	} else {
		c.logger.Debug("categories cleared", "user_id", u.ID, "removed", removed)
	}

	rows := normalizeSelection(sel).Associations(u.ID)
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.store.InsertActiveCategory(ctx, &rows[i]); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, RowFailure{
				CategoryID: rows[i].CategoryID(),
				Type:       rows[i].Type(),
				Error:      err.Error(),
			})
			c.logger.Warn("failed to save category",
				"user_id", u.ID,
				"category_id", rows[i].CategoryID(),
				"type", rows[i].Type(),
				"error", err)
			continue
		}
		result.Saved++
	}

	active, err := c.store.GetActiveCategories(ctx, u.ID)
	if err != nil {
		c.logger.Warn("failed to verify categories", "user_id", u.ID, "error", err)
	} else {
		n := len(active)
		result.Verified = &n
	}

	c.logger.Info("categories saved",
		"user_id", u.ID,
		"saved", result.Saved,
		"failed", result.Failed)
	return result, nil
}

// ActiveCategories returns the details of every category the user tracks.
func (c *CategoryReplacer) ActiveCategories(ctx context.Context, identifier string) (*ActiveCategories, error) {
	u, err := c.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	rows, err := c.store.GetActiveCategories(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active categories: %w", err)
	}
	sel := model.SplitAssociations(rows)

	revenue, err := c.categoriesByID(ctx, model.CategoryTypeRevenue, sel.Revenue)
	if err != nil {
		return nil, err
	}
	expense, err := c.categoriesByID(ctx, model.CategoryTypeExpense, sel.Expense)
	if err != nil {
		return nil, err
	}

	return &ActiveCategories{
		UserID:  u.ID,
		Revenue: revenue,
		Expense: expense,
		Total:   len(rows),
	}, nil
}

// EditableCategories returns the categories offered to the user's business
// type together with the current selection.
func (c *CategoryReplacer) EditableCategories(ctx context.Context, identifier string) (*EditableCategories, error) {
	u, err := c.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	out := &EditableCategories{
		UserID:         u.ID,
		BusinessTypeID: u.BusinessTypeID,
		Revenue:        []model.Category{},
		Expense:        []model.Category{},
	}

	// Without a business type nothing is on offer; an empty filter would
	// list every type's categories.
	if u.BusinessTypeID != "" {
		filter := service.CategoryFilter{BusinessTypeID: u.BusinessTypeID}
		if out.Revenue, err = c.store.ListCategories(ctx, model.CategoryTypeRevenue, filter); err != nil {
			return nil, fmt.Errorf("failed to load revenue categories: %w", err)
		}
		if out.Expense, err = c.store.ListCategories(ctx, model.CategoryTypeExpense, filter); err != nil {
			return nil, fmt.Errorf("failed to load expense categories: %w", err)
		}
	}

	rows, err := c.store.GetActiveCategories(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active categories: %w", err)
	}
	out.Active = model.SplitAssociations(rows)
	return out, nil
}

func (c *CategoryReplacer) categoriesByID(ctx context.Context, kind model.CategoryType, ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}
	cats, err := c.store.ListCategories(ctx, kind, service.CategoryFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s categories: %w", kind, err)
	}
	return cats, nil
}

// normalizeSelection drops blank and repeated ids, keeping first-seen order.
func normalizeSelection(sel model.CategorySelection) model.CategorySelection {
	return model.CategorySelection{
		Revenue: uniqueIDs(sel.Revenue),
		Expense: uniqueIDs(sel.Expense),
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
