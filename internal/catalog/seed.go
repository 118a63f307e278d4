package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/Veraticus/shopkeep/internal/storage"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog is the seed file format: business types and the category names
// each one offers.
type Catalog struct {
	BusinessTypes []CatalogType `yaml:"business_types"`
}

// CatalogType is one business type in a seed file.
type CatalogType struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Slug    string   `yaml:"slug"`
	Revenue []string `yaml:"revenue"`
	Expense []string `yaml:"expense"`
}

// SeedResult counts what a seed run changed.
type SeedResult struct {
	BusinessTypes int `json:"business_types"`
	Created       int `json:"created"`
	Skipped       int `json:"skipped"`
}

// LoadCatalog decodes a seed file. Unknown keys are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCatalog returns the catalog shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// Validate checks that every business type is identified and named.
func (c *Catalog) Validate() error {
	if len(c.BusinessTypes) == 0 {
		return fmt.Errorf("catalog has no business types")
	}
	seen := make(map[string]bool, len(c.BusinessTypes))
	for i, bt := range c.BusinessTypes {
		if strings.TrimSpace(bt.ID) == "" || strings.TrimSpace(bt.Name) == "" || strings.TrimSpace(bt.Slug) == "" {
			return fmt.Errorf("business type %d: id, name and slug are required", i)
		}
		if seen[bt.ID] {
			return fmt.Errorf("business type %q listed twice", bt.ID)
		}
		seen[bt.ID] = true
	}
	return nil
}

// Seed upserts every business type and creates the categories that do not
// exist yet. Existing categories are matched by name and left alone. The
// whole run is one transaction.
func (s *Service) Seed(ctx context.Context, c *Catalog) (*SeedResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result := &SeedResult{}
	err := storage.WithTx(ctx, s.store, func(tx service.Transaction) error {
		for _, ct := range c.BusinessTypes {
			bt := &model.BusinessType{ID: ct.ID, Name: ct.Name, Slug: ct.Slug}
			if err := tx.SaveBusinessType(ctx, bt); err != nil {
				return fmt.Errorf("failed to save business type %q: %w", ct.Slug, err)
			}
			result.BusinessTypes++

			for kind, names := range map[model.CategoryType][]string{
				model.CategoryTypeRevenue: ct.Revenue,
				model.CategoryTypeExpense: ct.Expense,
			} {
				created, skipped, err := seedCategories(ctx, tx, kind, ct.ID, names)
				if err != nil {
					return fmt.Errorf("failed to seed %s categories for %q: %w", kind, ct.Slug, err)
				}
				result.Created += created
				result.Skipped += skipped
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("catalog seeded",
		"business_types", result.BusinessTypes,
		"created", result.Created,
		"skipped", result.Skipped)
	return result, nil
}

func seedCategories(ctx context.Context, tx service.Transaction, kind model.CategoryType, businessTypeID string, names []string) (int, int, error) {
	existing, err := tx.ListCategories(ctx, kind, service.CategoryFilter{BusinessTypeID: businessTypeID})
	if err != nil {
		return 0, 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c.Name)] = true
	}

	created, skipped := 0, 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if have[strings.ToLower(name)] {
			skipped++
			continue
		}
		c := &model.Category{Name: name, BusinessTypeID: businessTypeID, Type: kind, IsActive: true}
		if err := tx.CreateCategory(ctx, c); err != nil {
			return created, skipped, err
		}
		have[strings.ToLower(name)] = true
		created++
	}
	return created, skipped, nil
}
