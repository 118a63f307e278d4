package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/shopkeep/internal/accounts"
	"github.com/Veraticus/shopkeep/internal/cli"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage client accounts",
		Long:  `List, create and delete client accounts and reset their passwords.`,
	}

	cmd.AddCommand(listUsersCmd())
	cmd.AddCommand(createUserCmd())
	cmd.AddCommand(deleteUserCmd())
	cmd.AddCommand(passwdUserCmd())

	return cmd
}

// withApp opens the application for the duration of fn.
func withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return listUsers(ctx, a, cmd.OutOrStdout())
			})
		},
	}
}

func listUsers(ctx context.Context, a *app, out io.Writer) error {
	users, err := a.clients.ListClients(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No accounts yet. Use 'shopkeep users create' to add one."))
		return nil
	}

	now := a.books.Now()
	table := cli.NewTable(out, "Email", "Name", "Business", "Plan", "Expires", "Status")
	for _, u := range users {
		status := string(u.PaymentStatus)
		switch {
		case u.IsAdmin:
			status = "admin"
		case u.Expired(now):
			status = cli.WarningStyle.Render("expired")
		}
		table.Row(u.Email, u.Name, u.BusinessName, string(u.Plan), u.ExpiresAt.Format("2006-01-02"), status)
	}
	return table.Flush()
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Long: `Create a client account: the login identity, the user record and the
initial category selection. The password is read from standard input when
--password is not given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nc := accounts.NewClient{}
			nc.Name, _ = cmd.Flags().GetString("name")
			nc.Email, _ = cmd.Flags().GetString("email")
			nc.Password, _ = cmd.Flags().GetString("password")
			nc.BusinessName, _ = cmd.Flags().GetString("business")
			nc.BusinessTypeID, _ = cmd.Flags().GetString("type")
			nc.Plan, _ = cmd.Flags().GetString("plan")
			nc.Admin, _ = cmd.Flags().GetBool("admin")
			nc.Categories.Revenue, _ = cmd.Flags().GetStringSlice("revenue")
			nc.Categories.Expense, _ = cmd.Flags().GetStringSlice("expense")

			if nc.Password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				nc.Password = p
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				return createUser(ctx, a, cmd.OutOrStdout(), nc)
			})
		},
	}

	cmd.Flags().String("name", "", "owner name")
	cmd.Flags().String("email", "", "login email")
	cmd.Flags().String("password", "", "initial password")
	cmd.Flags().String("business", "", "business name")
	cmd.Flags().String("type", model.BusinessTypeBarbershop, "business type id")
	cmd.Flags().String("plan", string(model.PlanMonthly), "plan (monthly, quarterly, annual)")
	cmd.Flags().Bool("admin", false, "create an administrator")
	cmd.Flags().StringSlice("revenue", nil, "revenue category ids to track")
	cmd.Flags().StringSlice("expense", nil, "expense category ids to track")

	return cmd
}

func createUser(ctx context.Context, a *app, out io.Writer, nc accounts.NewClient) error {
	u, err := a.clients.CreateClient(ctx, nc)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created %s (%s)", u.Email, u.ID)))
	if !u.IsAdmin {
		fmt.Fprintf(out, "  Plan %s, expires %s\n", u.Plan, u.ExpiresAt.Format("2006-01-02"))
	}
	return nil
}

func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <email|id>",
		Short: "Delete a client account",
		Long: `Delete a client with their category selection, books and login. The client is
named by email, user id or login identity id. Administrators cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return deleteUser(ctx, a, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

func deleteUser(ctx context.Context, a *app, out io.Writer, who string) error {
	var (
		u   *model.User
		err error
	)
	if strings.Contains(who, "@") {
		u, err = a.clients.DeleteClient(ctx, who)
	} else {
		u, err = a.clients.DeleteClientByIdentifier(ctx, who)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess("Deleted "+u.Email))
	return nil
}

func passwdUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd <email>",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.clients.ChangePassword(ctx, args[0], password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Password updated for "+args[0]))
				return nil
			})
		},
	}

	cmd.Flags().String("password", "", "new password")

	return cmd
}

// readPassword reads one line from in, prompting on prompt.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
