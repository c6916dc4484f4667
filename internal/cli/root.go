// Package cli contains the commands of the studentpay CLI.
package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"studentpay/internal/adapter/gateway"
	"studentpay/internal/cli/config"
	"studentpay/internal/cli/output"
	"studentpay/internal/domain"
	"studentpay/internal/infrastructure/cache"
	"studentpay/internal/infrastructure/store"
	"studentpay/internal/usecase"
	"studentpay/utils/logger"
)

var version = "dev"

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

// app carries the state one invocation of the CLI shares between commands.
type app struct {
	v         *viper.Viper
	cfgFile   string
	verbose   bool
	quiet     bool
	colorMode string

	cfg       *config.Config
	logger    *slog.Logger
	printer   *output.Printer
	session   *usecase.Session
	directory *usecase.Directory
}

// NewRootCommand builds the studentpay command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "studentpay",
		Short: "StudentPay department portal client",
		Long: `studentpay manages a department account on StudentPay from the terminal.

Credentials are kept in a local file and renewed automatically. Commands that
need a verified department refuse to run until the account is approved.

Example usage:
  studentpay login --email bursar@uni.edu
  studentpay status
  studentpay payments list
  studentpay departments list
  studentpay verify receipt <hash>`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .studentpay.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress informational output")
	flags.StringVar(&a.colorMode, "color", "auto", "color output: auto, always, or never")
	flags.String("api-url", "", "StudentPay backend URL")
	flags.String("store", "", "credentials file")

	_ = a.v.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("store.path", flags.Lookup("store"))

	root.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.verificationCmd(),
		a.dashboardCmd(),
		a.paymentsCmd(),
		a.profileCmd(),
		a.passwordCmd(),
		a.departmentsCmd(),
		a.payCmd(),
		a.verifyCmd(),
		versionCmd(),
	)

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return output.ExitSuccess
	}

	printer := output.NewPrinter(output.PrinterOptions{Err: root.ErrOrStderr(), ColorMode: output.ColorNever})
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		printer.FormatError(cliErr)
		return cliErr.ExitCode
	}
	printer.Error("%v", err)
	return output.ExitGeneral
}

// init reads the configuration and sets up logging and output.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	mode, err := output.ParseColorMode(a.colorMode)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}

	a.cfg, err = config.Load(a.v, a.cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "invalid configuration",
			Detail:     err.Error(),
			Suggestion: "check .studentpay.yaml and STUDENTPAY_* environment variables",
			ExitCode:   output.ExitConfigError,
		}
	}

	level := logger.ParseLevel(a.cfg.Logging.Level)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.printer = output.NewPrinter(output.PrinterOptions{
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
		ColorMode:    mode,
		ConfigColors: a.cfg.Output.Colors,
		Quiet:        a.quiet,
	})

	a.logger.Debug("configuration loaded",
		"api", a.cfg.API.BaseURL,
		"store", a.cfg.Store.Path,
		"verification_ttl", a.cfg.Verification.TTL,
	)
	return nil
}

// connect builds the session and directory over the configured backend.
func (a *app) connect() error {
	if a.session != nil {
		return nil
	}

	baseURL, err := a.cfg.RequireBaseURL()
	if err != nil {
		return &output.CLIError{
			Summary:    "no StudentPay backend configured",
			Detail:     err.Error(),
			Suggestion: "pass --api-url or set STUDENTPAY_API_BASE_URL",
			ExitCode:   output.ExitConfigError,
		}
	}

	api := gateway.NewStudentPayAPI(baseURL, a.cfg.API.Timeout)
	tokens := store.NewTokenStore(store.NewFileKV(a.cfg.Store.Path), "", a.logger)
	verification := cache.NewVerificationCache(a.cfg.Verification.TTL, nil)

	a.session = usecase.NewSession(api, tokens, verification, a.logger)
	a.directory = usecase.NewDirectory(api)
	return nil
}

// guard runs a page guard and turns navigation away into an error.
func (a *app) guard(ctx context.Context, run func(*usecase.Guards, context.Context) domain.Outcome) error {
	if err := a.connect(); err != nil {
		return err
	}
	return a.follow(run(a.session.Guards, ctx))
}

// follow maps a guard outcome to what a terminal command does with it.
func (a *app) follow(outcome domain.Outcome) error {
	switch outcome.Kind {
	case domain.OutcomeDegradedStay:
		a.printer.Warning("could not confirm the department's verification status, continuing")
		return nil
	case domain.OutcomeRedirectToLogin:
		return output.LoginRequired(outcome.Reason)
	case domain.OutcomeRedirectToVerificationPending:
		return output.VerificationPending()
	default:
		return nil
	}
}
