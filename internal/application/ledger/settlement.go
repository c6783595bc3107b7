package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/domain"
	"github.com/alejandrodnm/polysim/internal/metrics"
	"github.com/alejandrodnm/polysim/internal/ports"
)

// UpdateResults reconciles every OPEN bet against lookup: it marks prices to
// market and settles bets whose market has resolved. It returns the number of
// bets mutated and saves the snapshot once when that number is positive.
//
// A failed lookup skips only that bet; it stays OPEN and is retried on the
// next call. The returned error is non-nil only if ctx was cancelled
// mid-pass, in which case the bets reconciled so far are still saved.
func (l *Ledger) UpdateResults(ctx context.Context, lookup ports.MarketLookup) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	metrics.ReconcilePasses.Inc()

	var (
		mutated int
		settled []domain.Bet
		ctxErr  error
	)
	for i := range l.snap.Bets {
		bet := &l.snap.Bets[i]
		if !bet.IsOpen() || bet.MarketID == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}

		market, err := lookup.GetMarket(ctx, bet.MarketID)
		if err != nil {
			metrics.LookupFailures.Inc()
			level := slog.LevelWarn
			if errors.Is(err, domain.ErrMarketNotFound) {
				level = slog.LevelDebug
			}
			slog.Log(ctx, level, "reconcile: market lookup failed, bet stays open",
				"profile", l.profile,
				"bet_id", bet.ID,
				"market_id", bet.MarketID,
				"err", err,
			)
			continue
		}

		if l.reconcileBet(bet, market) {
			mutated++
			if bet.Status.IsTerminal() {
				settled = append(settled, *bet)
			}
		}
	}

	if mutated == 0 {
		return 0, ctxErr
	}

	// Lo reconciliado se guarda aunque ctx se haya cancelado a mitad de pasada.
	l.persist(context.WithoutCancel(ctx), "update_results")
	metrics.ReconcileMutations.Add(float64(mutated))
	slog.Info("reconcile pass complete",
		"profile", l.profile,
		"mutated", mutated,
		"settled", len(settled),
		"balance", l.snap.Balance.String(),
	)

	for _, b := range settled {
		metrics.BetsSettled.WithLabelValues(string(b.Status)).Inc()
		if l.events == nil {
			continue
		}
		if err := l.events.BetSettled(ctx, l.profile, b); err != nil {
			slog.Warn("ledger: publish bet settled failed", "bet_id", b.ID, "err", err)
		}
	}
	return mutated, ctxErr
}

// reconcileBet aplica mark-to-market y, si el mercado está resuelto con un
// ganador determinable, liquida la apuesta. Devuelve true si la apuesta cambió.
func (l *Ledger) reconcileBet(bet *domain.Bet, m domain.MarketDetails) bool {
	changed := false

	if price, ok := m.PriceOf(bet.Outcome); ok && inUnitInterval(price) && !price.Equal(bet.CurrentPrice) {
		bet.CurrentPrice = price
		changed = true
	}

	if !m.IsResolved() {
		return changed
	}
	winner, ok := m.WinningOutcome()
	if !ok {
		// Cerrado pero sin outcome ≥ 0.99: se trata como no resuelto todavía.
		return changed
	}

	now := l.now().UTC()
	bet.ResultCheckedAt = &now
	if bet.Outcome == winner {
		bet.Status = domain.BetStatusWon
		l.snap.Balance = l.snap.Balance.Add(bet.PotentialPayout)
	} else {
		bet.Status = domain.BetStatusLost
	}

	slog.Info("bet settled",
		"profile", l.profile,
		"bet_id", bet.ID,
		"market_id", bet.MarketID,
		"status", bet.Status,
		"winner", winner,
		"payout", bet.PotentialPayout.String(),
	)
	return true
}

func inUnitInterval(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(decimal.NewFromInt(1))
}
