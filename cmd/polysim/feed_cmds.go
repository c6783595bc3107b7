package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polysim/internal/adapters/advisor"
	"github.com/alejandrodnm/polysim/internal/adapters/polymarket"
	"github.com/alejandrodnm/polysim/internal/application/advisory"
	"github.com/alejandrodnm/polysim/internal/domain"
)

// Se piden más eventos de los que se muestran para que el filtro temporal tenga margen.
const fetchLimit = 50

type feedFlags struct {
	category  *string
	timeframe *string
	limit     *int
}

func addFeedFlags(fs *flag.FlagSet) feedFlags {
	return feedFlags{
		category:  fs.String("category", "", "category, e.g. nba, soccer, politics, or a tag id"),
		timeframe: fs.String("timeframe", "", "1d, 1w or YYYY-MM-DD"),
		limit:     fs.Int("limit", 5, "max events"),
	}
}

// loadEvents resuelve la categoría, trae eventos y aplica el filtro temporal.
func (a *app) loadEvents(ctx context.Context, ff feedFlags) ([]domain.Event, error) {
	var tags []string
	if *ff.category != "" {
		var err error
		tags, err = a.feed.ResolveTag(ctx, *ff.category)
		if err != nil {
			return nil, err
		}
		if len(tags) == 0 {
			slog.Warn("could not find tag for category, searching without tag", "category", *ff.category)
		}
	}

	events, err := a.feed.FetchEvents(ctx, tags, fetchLimit)
	if err != nil {
		return nil, err
	}
	if *ff.timeframe != "" {
		events, err = polymarket.FilterEvents(events, *ff.timeframe, time.Now())
		if err != nil {
			return nil, err
		}
	}
	if *ff.limit > 0 && len(events) > *ff.limit {
		events = events[:*ff.limit]
	}
	return events, nil
}

func (a *app) runEvents(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	ff := addFeedFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	events, err := a.loadEvents(ctx, ff)
	if err != nil {
		return err
	}
	a.console.PrintEvents(events)
	return nil
}

func (a *app) runAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	ff := addFeedFlags(fs)
	mode := fs.String("mode", a.cfg.Advisor.Mode, "analysis mode: full|quick")
	place := fs.Bool("place", false, "place the recommended bets in the simulator")
	workers := fs.Int("workers", 2, "events analyzed in parallel")
	if err := fs.Parse(args); err != nil {
		return err
	}

	adv, err := advisor.New(advisor.Config{
		APIKey:      a.cfg.Advisor.APIKey,
		BaseURL:     a.cfg.Advisor.BaseURL,
		Model:       a.cfg.Advisor.Model,
		Temperature: a.cfg.Advisor.Temperature,
		MaxTokens:   a.cfg.Advisor.MaxTokens,
		Timeout:     a.cfg.AdvisorTimeout(),
	})
	if err != nil {
		return err
	}
	svc := advisory.NewService(adv)

	events, err := a.loadEvents(ctx, ff)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		a.console.PrintEvents(nil)
		return nil
	}

	slog.Info("analyzing events", "count", len(events), "mode", *mode, "workers", *workers)
	results := svc.AnalyzeAll(ctx, events, *mode, *workers)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	l := a.ledger(ctx)
	for _, r := range results {
		if r.Err != nil {
			slog.Error("analysis failed", "event", r.Event.Title, "err", r.Err)
			continue
		}
		a.console.PrintAnalysis(r.Event, r.Analysis)

		if !*place || r.Analysis.Error != "" {
			continue
		}
		for _, p := range svc.PlaceRecommendations(ctx, l, r.Event, r.Analysis, *ff.category) {
			if p.Err != nil {
				a.console.PrintRejection(p.Recommendation.MarketQuestion, p.Err)
				continue
			}
			a.console.PrintBetPlaced(p.Bet, l.Balance())
		}
	}
	return nil
}
