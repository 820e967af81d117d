package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/shopspring/decimal"
)

var errNotLoggedIn = fmt.Errorf("%w: log in first: login --username <name> --password <password>", apperrors.ErrUnauthorized)

// currentUser resolves the saved session. A session of a user that no longer
// exists is dropped.
func (a *App) currentUser(ctx context.Context) (*domain.User, error) {
	session, err := a.sessions.Load()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errNotLoggedIn
	}
	user, err := a.services.User.GetUserByID(ctx, session.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = a.sessions.Clear()
		return nil, errNotLoggedIn
	}
	return user, err
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password, at least 4 characters")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "username"); err != nil {
		return err
	}

	user, err := a.services.User.Register(ctx, *username, *password)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("username '%s' is already taken", strings.TrimSpace(*username))
		}
		return err
	}
	fmt.Fprintf(a.out, "User '%s' registered (id=%s). Log in with: login --username %s --password ****\n",
		user.Username, user.UserID, user.Username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "username", "password"); err != nil {
		return err
	}

	user, err := a.services.User.Authenticate(ctx, *username, *password)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("user '%s' not found", strings.TrimSpace(*username))
	case errors.Is(err, apperrors.ErrUnauthorized):
		return errors.New("wrong password")
	case err != nil:
		return err
	}

	if err := a.sessions.Save(Session{UserID: user.UserID, Username: user.Username, LoggedInAt: time.Now().UTC()}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as '%s'\n", user.Username)
	return nil
}

func (a *App) logout(_ context.Context, args []string) error {
	fs := a.flagSet("logout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	session, err := a.sessions.Load()
	if err != nil {
		return err
	}
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	if session == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "Logged out '%s'.\n", session.Username)
	return nil
}

func (a *App) showPortfolio(ctx context.Context, args []string) error {
	fs := a.flagSet("show-portfolio")
	base := fs.String("base", a.baseCurrency, "base currency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	summary, err := a.services.Ledger.GetPortfolioSummary(ctx, user.UserID, *base)
	if err != nil {
		return err
	}
	if len(summary.Wallets) == 0 {
		fmt.Fprintln(a.out, "You have no wallets yet.")
		return nil
	}

	fmt.Fprintf(a.out, "Portfolio of '%s' (base: %s):\n", user.Username, summary.BaseCurrency)
	for _, w := range summary.Wallets {
		if !w.Available {
			fmt.Fprintf(a.out, "  - %s: %s → rate unavailable\n", w.CurrencyCode, amount(w.Balance))
			continue
		}
		fmt.Fprintf(a.out, "  - %s: %s → %s %s\n", w.CurrencyCode, amount(w.Balance), money(w.Value), summary.BaseCurrency)
	}
	fmt.Fprintln(a.out, "  ---------------------------------")
	fmt.Fprintf(a.out, "  TOTAL: %s %s\n", money(summary.Total), summary.BaseCurrency)
	return nil
}

func (a *App) tradeFlags(name string, args []string) (string, decimal.Decimal, error) {
	fs := a.flagSet(name)
	currency := fs.String("currency", "", "currency code")
	rawAmount := fs.String("amount", "", "amount of the currency")
	if err := fs.Parse(args); err != nil {
		return "", decimal.Zero, err
	}
	if err := required(fs, "currency", "amount"); err != nil {
		return "", decimal.Zero, err
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(*rawAmount))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("%w: 'amount' must be a positive number", apperrors.ErrValidation)
	}
	return *currency, amt, nil
}

func (a *App) buy(ctx context.Context, args []string) error {
	currency, amt, err := a.tradeFlags("buy", args)
	if err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	result, err := a.services.Ledger.Buy(ctx, user.UserID, currency, amt)
	if err != nil {
		return err
	}
	a.printTrade("Purchase", "Estimated cost", result)
	return nil
}

func (a *App) sell(ctx context.Context, args []string) error {
	currency, amt, err := a.tradeFlags("sell", args)
	if err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	result, err := a.services.Ledger.Sell(ctx, user.UserID, currency, amt)
	if err != nil {
		return err
	}
	a.printTrade("Sale", "Estimated revenue", result)
	return nil
}

func (a *App) printTrade(action, valueLabel string, r *domain.TradeResult) {
	fmt.Fprintf(a.out, "%s done: %s %s at %s %s/%s\n", action, amount(r.Amount), r.Currency, rate(r.Rate), r.BaseCurrency, r.Currency)
	fmt.Fprintln(a.out, "Portfolio changes:")
	fmt.Fprintf(a.out, "  - %s: was %s → now %s\n", r.Currency, amount(r.BalanceBefore), amount(r.BalanceAfter))
	fmt.Fprintf(a.out, "%s: %s %s\n", valueLabel, money(r.Value), r.BaseCurrency)
}

func (a *App) getRate(ctx context.Context, args []string) error {
	fs := a.flagSet("get-rate")
	from := fs.String("from", "", "currency to convert from")
	to := fs.String("to", "", "currency to convert to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "from", "to"); err != nil {
		return err
	}

	quote, err := a.services.RateResolver.GetRateQuote(ctx, *from, *to)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Rate %s→%s: %s (updated: %s)\n", quote.Pair.From, quote.Pair.To, rate(quote.Rate), displayTime(quote.UpdatedAt))
	fmt.Fprintf(a.out, "Reverse rate %s→%s: %s\n", quote.Pair.To, quote.Pair.From, rate(quote.ReverseRate))
	return nil
}

func (a *App) updateRates(ctx context.Context, args []string) error {
	fs := a.flagSet("update-rates")
	source := fs.String("source", "", "only refresh from coingecko or exchangerate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.services.RateUpdater.RunUpdate(ctx, *source)
	if err != nil {
		return err
	}
	if result.HasErrors() {
		fmt.Fprintf(a.errOut, "Update completed with errors. Total rates updated: %d.\n", result.TotalRates)
		for _, e := range result.Errors {
			fmt.Fprintf(a.errOut, "  - %s\n", e)
		}
		return nil
	}
	fmt.Fprintf(a.out, "Update successful. Total rates updated: %d. Last refresh: %s\n",
		result.TotalRates, result.LastRefresh.UTC().Format(time.RFC3339))
	return nil
}

func (a *App) showRates(ctx context.Context, args []string) error {
	fs := a.flagSet("show-rates")
	currency := fs.String("currency", "", "only pairs involving this currency")
	top := fs.Int("top", 0, "the N most expensive crypto currencies")
	base := fs.String("base", "", "quote every pair against this currency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *top < 0 {
		return fmt.Errorf("%w: --top must not be negative", apperrors.ErrValidation)
	}

	listing, err := a.services.RateResolver.ListRates(ctx, domain.RateListFilter{Currency: *currency, Top: *top, Base: *base})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Rates from cache (updated at %s):\n", displayTime(listing.LastRefresh))
	for _, e := range listing.Entries {
		line := fmt.Sprintf("  - %s: %s", e.Pair.Key(), rate(e.Rate))
		if e.Source != "" {
			line += " (source: " + e.Source + ")"
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *App) listCurrencies(ctx context.Context, args []string) error {
	fs := a.flagSet("list-currencies")
	if err := fs.Parse(args); err != nil {
		return err
	}
	currencies, err := a.services.Currency.ListCurrencies(ctx)
	if err != nil {
		return err
	}
	for _, c := range currencies {
		fmt.Fprintln(a.out, c.DisplayInfo())
	}
	return nil
}
