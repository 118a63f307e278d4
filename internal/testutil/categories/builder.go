// Package categories provides test infrastructure for seeding revenue and
// expense categories. It offers a fluent API scoped to one business type.
//
// Example usage:
//
//	cats, err := categories.NewBuilder(t).
//		WithFixture(categories.FixtureBarbershop).
//		WithExpense("Comissões").
//		Build(ctx, store)
package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// ForBusinessType selects the business type the categories belong to.
	ForBusinessType(id string) Builder

	// WithRevenue adds revenue categories.
	WithRevenue(names ...CategoryName) Builder

	// WithExpense adds expense categories.
	WithExpense(names ...CategoryName) Builder

	// WithInactive marks already added categories as inactive.
	WithInactive(names ...CategoryName) Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the provided storage and returns them.
	Build(ctx context.Context, storage service.Storage) (Categories, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategoryHaircut    CategoryName = "Corte"
	CategoryBeard      CategoryName = "Barba"
	CategoryProducts   CategoryName = "Venda de Produtos"
	CategoryWash       CategoryName = "Lavagem Completa"
	CategoryRent       CategoryName = "Aluguel"
	CategorySupplies   CategoryName = "Produtos"
	CategoryElectric   CategoryName = "Energia"
	CategoryCommission CategoryName = "Comissões"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name and kind, or nil if not found.
func (c Categories) Find(kind model.CategoryType, name CategoryName) *model.Category {
	for i := range c {
		if c[i].Type == kind && c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name and kind, or fails the test.
func (c Categories) MustFind(t *testing.T, kind model.CategoryType, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(kind, name)
	if cat == nil {
		t.Fatalf("%s category %q not found in test data", kind, name)
	}
	return *cat
}

// IDs returns the ids of every category of the given kind, in build order.
func (c Categories) IDs(kind model.CategoryType) []string {
	ids := []string{}
	for _, cat := range c {
		if cat.Type == kind {
			ids = append(ids, cat.ID)
		}
	}
	return ids
}

type pending struct {
	name CategoryName
	kind model.CategoryType
}

// categoryBuilder implements the Builder interface.
type categoryBuilder struct {
	t              *testing.T
	inactive       map[CategoryName]struct{}
	businessTypeID string
	items          []pending
}

// NewBuilder creates a new category builder for the given test. Categories
// default to the barbershop business type.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:              t,
		businessTypeID: model.BusinessTypeBarbershop,
		inactive:       make(map[CategoryName]struct{}),
	}
}

func (b *categoryBuilder) ForBusinessType(id string) Builder {
	b.businessTypeID = id
	return b
}

func (b *categoryBuilder) add(kind model.CategoryType, names []CategoryName) Builder {
	for _, name := range names {
		dup := false
		for _, p := range b.items {
			if p.kind == kind && p.name == name {
				dup = true
				break
			}
		}
		if !dup {
			b.items = append(b.items, pending{name: name, kind: kind})
		}
	}
	return b
}

func (b *categoryBuilder) WithRevenue(names ...CategoryName) Builder {
	return b.add(model.CategoryTypeRevenue, names)
}

func (b *categoryBuilder) WithExpense(names ...CategoryName) Builder {
	return b.add(model.CategoryTypeExpense, names)
}

func (b *categoryBuilder) WithInactive(names ...CategoryName) Builder {
	for _, name := range names {
		b.inactive[name] = struct{}{}
	}
	return b
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	b.WithRevenue(fixture.Revenue()...)
	return b.WithExpense(fixture.Expense()...)
}

func (b *categoryBuilder) Build(ctx context.Context, storage service.Storage) (Categories, error) {
	b.t.Helper()

	result := make(Categories, 0, len(b.items))
	for _, p := range b.items {
		_, off := b.inactive[p.name]
		cat := &model.Category{
			Name:           p.name.String(),
			BusinessTypeID: b.businessTypeID,
			Type:           p.kind,
			IsActive:       !off,
		}
		if err := storage.CreateCategory(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to create %s category %q: %w", p.kind, p.name, err)
		}
		result = append(result, *cat)
	}

	return result, nil
}
