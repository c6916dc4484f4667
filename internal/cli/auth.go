package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"studentpay/internal/cli/output"
	"studentpay/internal/domain"
	"studentpay/internal/usecase"
)

// readPassword takes the password from the flag or, when empty, the first
// line of stdin.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log a department in",
		Long: `Log a department in and store its credentials.

The password is read from stdin when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(); err != nil {
				return err
			}

			if !force {
				switch a.session.Guards.RedirectIfAuthenticated(ctx).Kind {
				case domain.OutcomeRedirectToDashboard:
					a.printer.Info("Already logged in. Use --force to log in again.")
					return nil
				case domain.OutcomeRedirectToVerificationPending:
					a.printer.Info("Already logged in, department is awaiting verification. Use --force to log in again.")
					return nil
				}
			}

			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			cred, err := a.session.Auth.Login(ctx, email, pw)
			if err != nil {
				return output.FromError(err)
			}
			a.printer.Success("Logged in as department %s", cred.DepartmentID)
			a.reportVerification(ctx)
			a.printer.PrintHints("login")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "department email")
	cmd.Flags().StringVar(&password, "password", "", "department password")
	cmd.Flags().BoolVar(&force, "force", false, "log in even when a session exists")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// reportVerification prints where a freshly logged in department stands.
func (a *app) reportVerification(ctx context.Context) {
	switch a.session.Verification.Execute(ctx) {
	case domain.VerificationVerified:
		a.printer.Print("Verification: %s", a.printer.StatusBadge("verified"))
	case domain.VerificationUnverified:
		a.printer.Print("Verification: %s", a.printer.StatusBadge("pending"))
		a.printer.Warning("department is awaiting verification, protected commands are unavailable until it is approved")
	default:
		a.printer.Print("Verification: %s", a.printer.StatusBadge("unknown"))
	}
}

func (a *app) signupCmd() *cobra.Command {
	var form domain.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a department account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(); err != nil {
				return err
			}

			pw, err := readPassword(cmd, form.Password)
			if err != nil {
				return err
			}
			form.Password = pw

			cred, err := a.session.Auth.Signup(ctx, form)
			if err != nil {
				return output.FromError(err)
			}
			a.printer.Success("Registered department %s", cred.DepartmentID)
			a.printer.Info("An administrator must verify the department before payments can be managed.")
			a.printer.PrintHints("signup")
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "department name")
	cmd.Flags().StringVar(&form.Faculty, "faculty", "", "faculty the department belongs to")
	cmd.Flags().StringVar(&form.Email, "email", "", "department email")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "contact phone number")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			if err := a.session.Auth.Logout(cmd.Context()); err != nil {
				return output.FromError(err)
			}
			a.printer.Success("Logged out")
			return nil
		},
	}
}

type statusReport struct {
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	Verification string `json:"verification"`
}

func (a *app) statusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session and verification status",
		Long: `Run the protected page check and report the result.

Exits non-zero when the department would be sent to the login or the
verification pending page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(); err != nil {
				return err
			}

			outcome := a.session.Guards.ProtectedPage(ctx)
			report := statusReport{
				Outcome:      outcome.Kind.String(),
				Reason:       string(outcome.Reason),
				Verification: domain.VerificationUnknown.String(),
			}
			if id, ok := a.session.Store.DepartmentID(ctx); ok {
				report.DepartmentID = id
			}
			switch outcome.Kind {
			case domain.OutcomeAuthorized:
				report.Verification = domain.VerificationVerified.String()
			case domain.OutcomeRedirectToVerificationPending:
				report.Verification = domain.VerificationUnverified.String()
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				a.printStatus(report)
			}

			if err := a.follow(outcome); err != nil {
				return err
			}
			a.printer.PrintHints("status")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *app) printStatus(r statusReport) {
	a.printer.Header("StudentPay session")
	department := r.DepartmentID
	if department == "" {
		department = a.printer.Dim("(not logged in)")
	}
	a.printer.Print("  department:   %s", department)
	a.printer.Print("  verification: %s", a.printer.StatusBadge(r.Verification))
	a.printer.Print("  outcome:      %s", r.Outcome)
}

func (a *app) verificationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verification",
		Short: "Check again whether the department has been verified",
		Long: `Ask the backend for the department's verification status, bypassing
any cached answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(); err != nil {
				return err
			}

			outcome := a.session.Guards.VerificationPendingPage(ctx)
			switch outcome.Kind {
			case domain.OutcomeRedirectToLogin:
				return output.LoginRequired(outcome.Reason)
			case domain.OutcomeRedirectToDashboard:
				a.printer.Success("Department is verified")
				a.printer.PrintHints("verification")
				return nil
			}

			if a.session.Verification.Execute(ctx) == domain.VerificationUnknown {
				a.printer.Warning("could not reach StudentPay to confirm the verification status")
				return nil
			}
			a.printer.Info("Department is awaiting verification by an administrator.")
			return nil
		},
	}
}

// protected wraps a RunE so it only runs for a verified department.
func (a *app) protected(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.guard(cmd.Context(), (*usecase.Guards).ProtectedPage); err != nil {
			return err
		}
		return output.FromError(run(cmd, args))
	}
}
