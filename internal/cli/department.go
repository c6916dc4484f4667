package cli

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"studentpay/internal/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func (a *app) dashboardCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show payment totals and recent payments",
		Args:  cobra.NoArgs,
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			stats, err := a.session.Portal.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			a.printer.Header("Dashboard")
			a.printer.Print("  payments: %d", stats.TotalPayments)
			a.printer.Print("  total:    %s", formatAmount(stats.TotalAmount))

			if len(stats.Monthly) > 0 {
				a.printer.Header("Monthly revenue")
				table := a.printer.NewTable([]string{"Month", "Amount"})
				for _, m := range stats.Monthly {
					table.AddRow(m.Month, formatAmount(m.Amount))
				}
				table.Render()
			}

			if len(stats.RecentPayments) > 0 {
				a.printer.Header("Recent payments")
				table := a.printer.NewTable([]string{"Reference", "Student", "Email", "Amount", "Status", "Date"})
				for _, p := range stats.RecentPayments {
					table.AddRow(p.Reference, p.FirstName+" "+p.LastName, p.CustomerEmail,
						formatAmount(p.Amount), a.printer.StatusBadge(p.Status), p.CreatedAt)
				}
				table.Render()
			}
			a.printer.PrintHints("dashboard")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *app) paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"fees"},
		Short:   "Manage the fee items the department collects",
	}
	cmd.AddCommand(a.paymentsListCmd(), a.paymentsCreateCmd(), a.paymentsUpdateCmd(), a.paymentsDeleteCmd())
	return cmd
}

func (a *app) paymentsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fee items",
		Args:  cobra.NoArgs,
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			items, err := a.session.Portal.FeeItems(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				a.printer.Info("No fee items yet. Create one with 'studentpay payments create'.")
				return nil
			}

			table := a.printer.NewTable([]string{"ID", "Payment for", "Amount due"})
			for _, item := range items {
				table.AddRow(item.ID.String(), item.PaymentFor, formatAmount(item.AmountDue))
			}
			table.Render()
			return nil
		}),
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func feeItemFlags(cmd *cobra.Command, in *domain.FeeItemInput) {
	cmd.Flags().StringVar(&in.PaymentFor, "title", "", "what the payment is for")
	cmd.Flags().Float64Var(&in.AmountDue, "amount", 0, "amount due")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
}

func (a *app) paymentsCreateCmd() *cobra.Command {
	var in domain.FeeItemInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a fee item",
		Args:  cobra.NoArgs,
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			item, err := a.session.Portal.CreateFeeItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.printer.Success("Created fee item %s: %s (%s)", item.ID, item.PaymentFor, formatAmount(item.AmountDue))
			a.printer.PrintHints("payments create")
			return nil
		}),
	}

	feeItemFlags(cmd, &in)
	return cmd
}

func (a *app) paymentsUpdateCmd() *cobra.Command {
	var in domain.FeeItemInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a fee item",
		Args:  cobra.ExactArgs(1),
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			item, err := a.session.Portal.UpdateFeeItem(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			a.printer.Success("Updated fee item %s: %s (%s)", item.ID, item.PaymentFor, formatAmount(item.AmountDue))
			return nil
		}),
	}

	feeItemFlags(cmd, &in)
	return cmd
}

func (a *app) paymentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a fee item",
		Args:  cobra.ExactArgs(1),
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			if err := a.session.Portal.DeleteFeeItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printer.Success("Deleted fee item %s", args[0])
			return nil
		}),
	}
}

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the department profile",
	}
	cmd.AddCommand(a.profileShowCmd(), a.profileUpdateCmd())
	return cmd
}

func (a *app) printDepartment(d *domain.Department) {
	a.printer.Header(d.Name)
	a.printer.Print("  id:       %s", d.ID)
	a.printer.Print("  faculty:  %s", d.Faculty)
	a.printer.Print("  email:    %s", d.Email)
	a.printer.Print("  phone:    %s", d.Phone)
	status := "unverified"
	if d.IsVerified {
		status = "verified"
	}
	a.printer.Print("  status:   %s", a.printer.StatusBadge(status))
}

func (a *app) profileShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the department profile",
		Args:  cobra.NoArgs,
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok := a.session.Store.DepartmentID(ctx)
			if !ok {
				return domain.ErrSessionExpired
			}
			dept, err := a.directory.Department(ctx, id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), dept)
			}
			a.printDepartment(dept)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *app) profileUpdateCmd() *cobra.Command {
	var update domain.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the department profile",
		Args:  cobra.NoArgs,
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			dept, err := a.session.Portal.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			a.printer.Success("Profile updated")
			a.printDepartment(dept)
			return nil
		}),
	}

	cmd.Flags().StringVar(&update.Name, "name", "", "department name")
	cmd.Flags().StringVar(&update.Faculty, "faculty", "", "faculty")
	cmd.Flags().StringVar(&update.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&update.Phone, "phone", "", "contact phone")
	return cmd
}

func (a *app) passwordCmd() *cobra.Command {
	var req domain.PasswordChange

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the department password",
		Args:  cobra.NoArgs,
		RunE: a.protected(func(cmd *cobra.Command, args []string) error {
			if err := a.session.Portal.ChangePassword(cmd.Context(), req); err != nil {
				return err
			}
			if req.LogoutAll {
				a.printer.Success("Password changed, every session has been logged out")
				return nil
			}
			a.printer.Success("Password changed")
			return nil
		}),
	}

	cmd.Flags().StringVar(&req.OldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&req.NewPassword, "new", "", "new password")
	cmd.Flags().BoolVar(&req.LogoutAll, "logout-all", false, "log out every session, including this one")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
