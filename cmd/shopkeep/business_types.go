package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/shopkeep/internal/cli"
	"github.com/spf13/cobra"
)

func businessTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "business-types",
		Aliases: []string{"types"},
		Short:   "List business types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return listBusinessTypes(ctx, a, cmd.OutOrStdout())
			})
		},
	}
}

func listBusinessTypes(ctx context.Context, a *app, out io.Writer) error {
	types, err := a.catalog.ListBusinessTypes(ctx, 0)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No business types found. Use 'shopkeep seed' to load them."))
		return nil
	}

	table := cli.NewTable(out, "ID", "Name", "Slug")
	for _, bt := range types {
		table.Row(bt.ID, bt.Name, bt.Slug)
	}
	return table.Flush()
}
