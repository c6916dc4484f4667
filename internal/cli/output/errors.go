package output

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"studentpay/internal/domain"
)

// Process exit codes. Scripts branch on ExitAuthRequired and ExitPending to
// tell "log in again" apart from "wait for an administrator".
const (
	ExitSuccess      = 0
	ExitGeneral      = 1
	ExitUsageError   = 2
	ExitAuthRequired = 3
	ExitConfigError  = 4
	ExitPending      = 5
	ExitBackendError = 6
)

// CLIError is an error the CLI reports to the user and exits with.
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
}

func (e *CLIError) Error() string {
	return e.Summary
}

// LoginRequired is the error for a guard or command that sends the visitor to
// the login page. The reason's banner becomes the summary.
func LoginRequired(reason domain.LoginReason) *CLIError {
	summary := reason.Banner()
	if summary == "" {
		summary = domain.ReasonUnauthorized.Banner()
	}
	return &CLIError{
		Summary:    summary,
		Suggestion: "run 'studentpay login'",
		ExitCode:   ExitAuthRequired,
	}
}

// VerificationPending is the error for a department that is not verified yet.
func VerificationPending() *CLIError {
	return &CLIError{
		Summary:    "department is awaiting verification",
		Suggestion: "run 'studentpay verification' to check again",
		ExitCode:   ExitPending,
	}
}

// FromError maps a usecase error onto a CLIError. Errors that are already
// CLIErrors, and ones with no StudentPay meaning, pass through unchanged.
func FromError(err error) error {
	var cliErr *CLIError
	if err == nil || errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return &CLIError{Summary: err.Error(), ExitCode: ExitUsageError}
	case errors.Is(err, domain.ErrUnauthenticated):
		return LoginRequired(domain.ReasonUnauthorized)
	case errors.Is(err, domain.ErrSessionExpired):
		return LoginRequired(domain.ReasonSessionExpired)
	case errors.Is(err, domain.ErrUnauthorized):
		return &CLIError{Summary: "credentials rejected", Detail: backendDetail(err), ExitCode: ExitAuthRequired}
	case errors.Is(err, domain.ErrNotFound):
		return &CLIError{Summary: "not found", Detail: backendDetail(err), ExitCode: ExitGeneral}
	case errors.Is(err, domain.ErrBackendRejected):
		return &CLIError{Summary: "request rejected", Detail: backendDetail(err), ExitCode: ExitBackendError}
	case errors.Is(err, domain.ErrBackendUnavailable),
		errors.Is(err, domain.ErrMalformedResponse),
		errors.Is(err, domain.ErrMissingDepartment):
		return &CLIError{
			Summary:    "StudentPay backend unavailable",
			Detail:     err.Error(),
			Suggestion: "check api.base_url and try again",
			ExitCode:   ExitBackendError,
		}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return &CLIError{
			Summary:    "credentials file unavailable",
			Detail:     err.Error(),
			Suggestion: "check store.path is writable",
			ExitCode:   ExitConfigError,
		}
	default:
		return err
	}
}

// backendDetail is the message the backend attached to a rejection, if any.
func backendDetail(err error) string {
	var be *domain.BackendError
	if errors.As(err, &be) {
		return be.Detail
	}
	return ""
}

// FormatError writes e to the error stream, one line per populated field.
func (p *Printer) FormatError(e *CLIError) {
	label := "[ERROR] "
	if p.useColors {
		label = color.New(color.FgRed, color.Bold).Sprint("Error: ")
	}
	fmt.Fprintf(p.err, "%s%s\n", label, e.Summary)
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		suggestion := "  Suggestion: " + e.Suggestion
		if p.useColors {
			suggestion = color.New(color.FgCyan).Sprint(suggestion)
		}
		fmt.Fprintln(p.err, suggestion)
	}
}
