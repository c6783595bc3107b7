package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/application/ledger"
)

func (a *app) runPortfolio(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("portfolio", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	l := a.ledger(ctx)
	a.console.PrintPortfolio(l.Profile(), l.Summary(), l.Portfolio())
	return nil
}

func (a *app) runBet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bet", flag.ContinueOnError)
	marketID := fs.String("market-id", "", "upstream market id (enables settlement and price lookup)")
	question := fs.String("market", "", "market question (looked up when -market-id is set)")
	outcome := fs.String("outcome", "", "outcome label, e.g. Yes")
	amount := fs.String("amount", "", "stake in virtual dollars")
	price := fs.String("price", "", "entry price in (0,1]; defaults to the current market price")
	event := fs.String("event", "", "event title")
	category := fs.String("category", "", "category label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := parseDecimal("amount", *amount)
	if err != nil {
		return err
	}
	req := ledger.BetRequest{
		Market:   *question,
		Outcome:  strings.TrimSpace(*outcome),
		Amount:   amt,
		Event:    *event,
		MarketID: strings.TrimSpace(*marketID),
		Category: *category,
	}

	switch {
	case *price != "":
		if req.Price, err = parseDecimal("price", *price); err != nil {
			return err
		}
	case req.MarketID != "":
		m, err := a.feed.GetMarket(ctx, req.MarketID)
		if err != nil {
			return fmt.Errorf("lookup market %s: %w", req.MarketID, err)
		}
		p, ok := m.PriceOf(req.Outcome)
		if !ok {
			return fmt.Errorf("market %s has no price for outcome %q (outcomes: %s)",
				req.MarketID, req.Outcome, strings.Join(m.Outcomes, ", "))
		}
		req.Price = p
		if req.Market == "" {
			req.Market = m.Question
		}
	default:
		return errors.New("bet: -price is required without -market-id")
	}

	l := a.ledger(ctx)
	bet, err := l.PlaceBet(ctx, req)
	if err != nil {
		return err
	}
	a.console.PrintBetPlaced(bet, l.Balance())
	return nil
}

func (a *app) runFund(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fund", flag.ContinueOnError)
	amount := fs.String("amount", "", "amount to add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *amount == "" && fs.NArg() > 0 {
		*amount = fs.Arg(0)
	}
	amt, err := parseDecimal("amount", *amount)
	if err != nil {
		return err
	}

	bal, err := a.ledger(ctx).AddFunds(ctx, amt)
	if err != nil {
		return err
	}
	a.console.PrintFunds(amt, bal)
	return nil
}

func (a *app) runSettle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	all := fs.Bool("all", false, "reconcile every stored profile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.settleOnce(ctx, *all)
}

// settleOnce reconcilia el perfil activo o todos los perfiles guardados.
func (a *app) settleOnce(ctx context.Context, all bool) error {
	if !all {
		l := a.ledger(ctx)
		n, err := l.UpdateResults(ctx, a.feed)
		a.console.PrintSettlement(l.Profile(), n, l.Summary())
		return err
	}

	profiles, err := a.store.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	for _, p := range profiles {
		if err := a.settleProfile(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) settleProfile(ctx context.Context, profile string) error {
	if profile == a.profile {
		l := a.ledger(ctx)
		n, err := l.UpdateResults(ctx, a.feed)
		a.console.PrintSettlement(profile, n, l.Summary())
		return err
	}
	store, err := openProfileStore(ctx, a, profile)
	if err != nil {
		return err
	}
	defer store.Close()

	l := ledger.New(ctx, profile, store, ledger.WithEvents(a.events))
	n, err := l.UpdateResults(ctx, a.feed)
	a.console.PrintSettlement(profile, n, l.Summary())
	return err
}

func (a *app) runProfiles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	profiles, err := a.store.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	a.console.PrintProfiles(profiles, a.profile)
	return nil
}

func parseDecimal(name, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("-%s is required", name)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return d, nil
}
