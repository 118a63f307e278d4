package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/shopkeep/internal/cli"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage revenue and expense categories",
		Long: `List the categories offered to a business type and choose which of them a
client tracks.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(showCategoriesCmd())
	cmd.AddCommand(setCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the categories of a business type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			typeID, _ := cmd.Flags().GetString("type")
			all, _ := cmd.Flags().GetBool("all")
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return listCategories(ctx, a, cmd.OutOrStdout(), typeID, !all)
			})
		},
	}

	cmd.Flags().String("type", model.BusinessTypeBarbershop, "business type id")
	cmd.Flags().Bool("all", false, "include inactive categories")

	return cmd
}

func listCategories(ctx context.Context, a *app, out io.Writer, typeID string, activeOnly bool) error {
	tc, err := a.catalog.CategoriesForType(ctx, typeID, activeOnly)
	if err != nil {
		return err
	}
	if tc.TotalRevenue+tc.TotalExpense == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'shopkeep seed' to load them."))
		return nil
	}

	table := cli.NewTable(out, "Type", "ID", "Name", "Active")
	for _, group := range [][]model.Category{tc.Revenue, tc.Expense} {
		for _, c := range group {
			table.Row(string(c.Type), c.ID, c.Name, strconv.FormatBool(c.IsActive))
		}
	}
	return table.Flush()
}

func showCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Show the categories a client tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return showCategories(ctx, a, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

func showCategories(ctx context.Context, a *app, out io.Writer, email string) error {
	u, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}

	active, err := a.clients.Categories().ActiveCategories(ctx, u.ID)
	if err != nil {
		return err
	}
	if active.Total == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render(u.Email+" tracks no categories."))
		return nil
	}

	table := cli.NewTable(out, "Type", "ID", "Name")
	for _, c := range active.Revenue {
		table.Row(string(model.CategoryTypeRevenue), c.ID, c.Name)
	}
	for _, c := range active.Expense {
		table.Row(string(model.CategoryTypeExpense), c.ID, c.Name)
	}
	return table.Flush()
}

func setCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <email>",
		Short: "Replace the categories a client tracks",
		Long: `Replace the whole category selection of a client. Categories not listed are
removed; an empty selection clears it.

By default the replacement is all or nothing. With --each every category is
written on its own and failures are reported without undoing the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sel model.CategorySelection
			sel.Revenue, _ = cmd.Flags().GetStringSlice("revenue")
			sel.Expense, _ = cmd.Flags().GetStringSlice("expense")
			each, _ := cmd.Flags().GetBool("each")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				return setCategories(ctx, a, cmd.OutOrStdout(), args[0], sel, each)
			})
		},
	}

	cmd.Flags().StringSlice("revenue", nil, "revenue category ids")
	cmd.Flags().StringSlice("expense", nil, "expense category ids")
	cmd.Flags().Bool("each", false, "write categories one by one and report failures")

	return cmd
}

func setCategories(ctx context.Context, a *app, out io.Writer, email string, sel model.CategorySelection, each bool) error {
	u, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}

	replacer := a.clients.Categories()
	if !each {
		res, err := replacer.ReplaceCategories(ctx, u.ID, sel)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s now tracks %d categories", u.Email, res.Final)))
		fmt.Fprintf(out, "  Removed %d, inserted %d\n", res.Removed, res.Inserted)
		return nil
	}

	res, err := replacer.ReplaceCategoriesEach(ctx, u.ID, sel)
	if err != nil {
		return err
	}
	if res.Failed == 0 {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved %d categories for %s", res.Saved, u.Email)))
		return nil
	}

	fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Saved %d categories, %d failed", res.Saved, res.Failed)))
	for _, f := range res.Failures {
		fmt.Fprintf(out, "  %s %s: %s\n", f.Type, f.CategoryID, f.Error)
	}
	return fmt.Errorf("%d categories could not be saved", res.Failed)
}

func userByEmail(ctx context.Context, a *app, email string) (*model.User, error) {
	u, err := a.store.GetUserByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUserNotFound, email)
		}
		return nil, err
	}
	return u, nil
}
