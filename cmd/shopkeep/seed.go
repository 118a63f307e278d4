package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/shopkeep/internal/catalog"
	"github.com/Veraticus/shopkeep/internal/cli"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load business types and their categories",
		Long: `Create the business types and the revenue and expense categories offered to
each of them. Without --file the catalog shipped with shopkeep is used.

Seeding is idempotent: existing business types are updated and categories
that already exist by name are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runSeed(ctx, a, cmd.OutOrStdout(), file)
			})
		},
	}

	cmd.Flags().String("file", "", "YAML catalog to load instead of the built-in one")

	return cmd
}

func runSeed(ctx context.Context, a *app, out io.Writer, file string) error {
	var (
		c   *catalog.Catalog
		err error
	)
	if file == "" {
		c, err = catalog.DefaultCatalog()
	} else {
		c, err = loadCatalogFile(file)
	}
	if err != nil {
		return err
	}

	result, err := a.catalog.Seed(ctx, c)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Seeded %d business types", result.BusinessTypes)))
	fmt.Fprintf(out, "  Categories created: %d\n", result.Created)
	fmt.Fprintf(out, "  Already present:    %d\n", result.Skipped)
	return nil
}

func loadCatalogFile(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	return catalog.LoadCatalog(f)
}
