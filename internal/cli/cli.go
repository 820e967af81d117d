// Package cli implements the valutatrade command line: one sub-command per
// use case, each with its own pflag.FlagSet.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/spf13/pflag"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

// App dispatches sub-commands to the service container.
type App struct {
	services     *portssvc.ServiceContainer
	sessions     *SessionStore
	baseCurrency string
	logger       *slog.Logger
	out          io.Writer
	errOut       io.Writer
	commands     []command
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects normal and error output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithLogger sets the logger handed to services through the context.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates the CLI. baseCurrency is the default of show-portfolio --base.
func New(services *portssvc.ServiceContainer, sessions *SessionStore, baseCurrency string, opts ...Option) *App {
	a := &App{
		services:     services,
		sessions:     sessions,
		baseCurrency: baseCurrency,
		logger:       slog.Default(),
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.commands = []command{
		{"register", "Register a new user", a.register},
		{"login", "Log in and remember the session", a.login},
		{"logout", "Forget the current session", a.logout},
		{"show-portfolio", "Show wallets valued in a base currency", a.showPortfolio},
		{"buy", "Buy a currency", a.buy},
		{"sell", "Sell a currency", a.sell},
		{"get-rate", "Show the rate of a currency pair", a.getRate},
		{"update-rates", "Refresh rates from the external providers", a.updateRates},
		{"show-rates", "Show rates from the local cache", a.showRates},
		{"list-currencies", "List supported currencies", a.listCurrencies},
	}
	return a
}

// Run executes args[0] with the remaining arguments and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return ExitError
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.usage()
		return ExitOK
	}

	var cmd *command
	for i := range a.commands {
		if a.commands[i].name == name {
			cmd = &a.commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(a.errOut, "Unknown command '%s'\n\n", name)
		a.usage()
		return ExitError
	}

	ctx = middleware.WithLogger(ctx, a.logger.With(slog.String("command", name)))
	if err := cmd.run(ctx, args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		a.logger.Debug("Command failed", slog.String("command", name), slog.String("error", err.Error()))
		fmt.Fprintln(a.errOut, describeError(err))
		return ExitError
	}
	return ExitOK
}

func (a *App) usage() {
	var b strings.Builder
	b.WriteString("ValutaTrade Hub - currency wallet management\n\nUsage: valutatrade <command> [flags]\n\nCommands:\n")
	for _, c := range a.commands {
		fmt.Fprintf(&b, "  %-16s %s\n", c.name, c.summary)
	}
	b.WriteString("\nRun 'valutatrade <command> --help' for the flags of a command.\n")
	fmt.Fprint(a.errOut, b.String())
}

// flagSet returns a FlagSet that reports parse errors instead of exiting.
func (a *App) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.SortFlags = false
	return fs
}

func required(fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil || strings.TrimSpace(f.Value.String()) == "" {
			return fmt.Errorf("%w: --%s is required", apperrors.ErrValidation, name)
		}
	}
	return nil
}

const (
	networkHint  = "Retry later or check your network connection."
	currencyHint = "Run 'list-currencies' to see the supported codes."
)

// describeError turns an error into the message printed on stderr.
func describeError(err error) string {
	var (
		unavailable *apperrors.RateUnavailableError
		unknown     *apperrors.CurrencyNotFoundError
		invalid     *apperrors.InvalidCurrencyCodeError
	)
	switch {
	case errors.As(err, &unavailable):
		if unavailable.FetchAttempted() {
			return err.Error() + "\n" + networkHint
		}
		return err.Error()
	case errors.As(err, &unknown), errors.As(err, &invalid):
		return err.Error() + "\n" + currencyHint
	case errors.Is(err, apperrors.ErrProviderFailure), errors.Is(err, apperrors.ErrUpdateFailed):
		return err.Error() + "\n" + networkHint
	default:
		return err.Error()
	}
}
