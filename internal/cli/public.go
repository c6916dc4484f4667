package cli

import (
	"github.com/spf13/cobra"

	"studentpay/internal/cli/output"
	"studentpay/internal/domain"
)

// publicRun connects to the backend and runs a command that needs no
// credential.
func (a *app) publicRun(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.connect(); err != nil {
			return err
		}
		return output.FromError(run(cmd, args))
	}
}

func (a *app) departmentsListRun(jsonOutput *bool) func(*cobra.Command, []string) error {
	return a.publicRun(func(cmd *cobra.Command, args []string) error {
		departments, err := a.directory.Departments(cmd.Context())
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(cmd.OutOrStdout(), departments)
		}

		table := a.printer.NewTable([]string{"ID", "Name", "Faculty", "Status"})
		for _, d := range departments {
			status := "unverified"
			if d.IsVerified {
				status = "verified"
			}
			table.AddRow(d.ID.String(), d.Name, d.Faculty, a.printer.StatusBadge(status))
		}
		table.Render()
		a.printer.PrintHints("departments")
		return nil
	})
}

func (a *app) departmentsCmd() *cobra.Command {
	var jsonOutput bool

	// Without a subcommand the departments are listed.
	cmd := &cobra.Command{
		Use:   "departments",
		Short: "Browse the departments students can pay",
		Args:  cobra.NoArgs,
		RunE:  a.departmentsListRun(&jsonOutput),
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		Args:  cobra.NoArgs,
		RunE:  a.departmentsListRun(&jsonOutput),
	}
	list.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	show := &cobra.Command{
		Use:   "show <department-id> [fee-item-id]",
		Short: "Show a department or one of its fee items",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.publicRun(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 2 {
				item, err := a.directory.FeeItem(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				a.printer.Header(item.PaymentFor)
				a.printer.Print("  id:         %s", item.ID)
				a.printer.Print("  amount due: %s", formatAmount(item.AmountDue))
				return nil
			}

			dept, err := a.directory.Department(ctx, args[0])
			if err != nil {
				return err
			}
			a.printDepartment(dept)
			return nil
		}),
	}
	cmd.AddCommand(list, show)
	return cmd
}

func (a *app) payCmd() *cobra.Command {
	var req domain.PaymentRequest

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Start a student payment for a fee item",
		Long: `Start a payment and print the URL where the student completes it.

After paying, confirm the transaction with 'studentpay verify transaction'.`,
		Args: cobra.NoArgs,
		RunE: a.publicRun(func(cmd *cobra.Command, args []string) error {
			initiation, err := a.directory.Pay(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printer.Success("Payment started, reference %s", initiation.Reference)
			a.printer.Print("Complete the payment at: %s", a.printer.Bold(initiation.AuthorizationURL))
			a.printer.PrintHints("pay")
			return nil
		}),
	}

	cmd.Flags().StringVar(&req.Department, "department", "", "department id")
	cmd.Flags().StringVar(&req.Payment, "item", "", "fee item id")
	cmd.Flags().StringVar(&req.CustomerEmail, "email", "", "student email")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "student first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "student last name")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Confirm transactions and receipts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "transaction <reference>",
		Short: "Confirm a payment by its transaction reference",
		Args:  cobra.ExactArgs(1),
		RunE: a.publicRun(func(cmd *cobra.Command, args []string) error {
			result, err := a.directory.VerifyTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printer.Print("Transaction %s: %s", result.Reference, a.printer.StatusBadge(result.Status))
			if result.ReceiptURL != "" {
				a.printer.Print("Receipt: %s", result.ReceiptURL)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "receipt <hash>",
		Short: "Check that a receipt is genuine",
		Args:  cobra.ExactArgs(1),
		RunE: a.publicRun(func(cmd *cobra.Command, args []string) error {
			receipt, err := a.directory.VerifyReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !receipt.Valid() {
				a.printer.Print("Receipt: %s", a.printer.StatusBadge("invalid"))
				if receipt.Detail != "" {
					a.printer.Print("  %s", receipt.Detail)
				}
				return nil
			}

			a.printer.Print("Receipt: %s", a.printer.StatusBadge("valid"))
			a.printer.Print("  reference:   %s", receipt.Reference)
			a.printer.Print("  student:     %s <%s>", receipt.StudentName, receipt.CustomerEmail)
			a.printer.Print("  department:  %s", receipt.Department)
			a.printer.Print("  payment for: %s", receipt.PaymentFor)
			a.printer.Print("  amount:      %s", formatAmount(receipt.Amount))
			a.printer.Print("  paid at:     %s", receipt.PaidAt)
			return nil
		}),
	})
	return cmd
}
