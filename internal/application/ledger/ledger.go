// Package ledger implements the paper-trading wallet of one profile: balance
// accounting, bet placement and settlement against upstream market data.
//
// A Ledger loads its snapshot eagerly at construction, mutates it in memory and
// saves the whole document after every successful mutation. Persistence
// failures are logged and swallowed: the in-memory state stays correct for the
// current process, but the mutation is not durable.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/domain"
	"github.com/alejandrodnm/polysim/internal/metrics"
	"github.com/alejandrodnm/polysim/internal/ports"
)

// DefaultProfile es el perfil usado cuando el caller no elige uno.
const DefaultProfile = "Default"

// BetRequest carries the inputs of PlaceBet.
type BetRequest struct {
	Market   string // market question
	Outcome  string
	Amount   decimal.Decimal
	Price    decimal.Decimal
	Event    string
	MarketID string
	Category string
}

// Option configura un Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithEvents attaches a publisher notified after each persisted mutation.
func WithEvents(ev ports.LedgerEvents) Option {
	return func(l *Ledger) { l.events = ev }
}

// Ledger is the in-memory wallet of one profile.
// Its methods are safe for concurrent use within one process; separate
// processes writing the same profile are last-writer-wins.
type Ledger struct {
	mu      sync.Mutex
	profile string
	store   ports.SnapshotStore
	events  ports.LedgerEvents
	now     func() time.Time
	snap    domain.Snapshot
}

// New builds a Ledger for profile and loads its snapshot from store immediately.
// It never fails: missing or unreadable state yields the default snapshot.
func New(ctx context.Context, profile string, store ports.SnapshotStore, opts ...Option) *Ledger {
	if profile == "" {
		profile = DefaultProfile
	}
	l := &Ledger{
		profile: profile,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.snap = l.load(ctx)
	return l
}

// load aplica la política "swallow and default" de forma explícita.
func (l *Ledger) load(ctx context.Context) domain.Snapshot {
	snap, err := l.store.Load(ctx)
	switch {
	case err == nil:
		if snap.Bets == nil {
			snap.Bets = []domain.Bet{}
		}
		slog.Debug("ledger loaded",
			"profile", l.profile,
			"balance", snap.Balance.String(),
			"bets", len(snap.Bets),
		)
		return snap

	case errors.Is(err, domain.ErrSnapshotNotFound):
		// Perfil nuevo: se crea implícitamente persistiendo el snapshot por defecto.
		snap = domain.DefaultSnapshot()
		l.snap = snap
		l.persist(ctx, "init")
		slog.Info("ledger profile created", "profile", l.profile, "balance", snap.Balance.String())
		return snap

	default:
		metrics.StorageFailures.WithLabelValues("load").Inc()
		slog.Warn("ledger load failed, using default snapshot",
			"profile", l.profile,
			"err", err,
		)
		return domain.DefaultSnapshot()
	}
}

// Profile returns the profile name this ledger belongs to.
func (l *Ledger) Profile() string {
	return l.profile
}

// Balance returns the current wallet balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.Balance
}

// Snapshot returns a deep copy of the in-memory state.
func (l *Ledger) Snapshot() domain.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.Clone()
}

// PlaceBet debits amount from the balance and records a new OPEN bet.
// On a *domain.ValidationError nothing is mutated.
func (l *Ledger) PlaceBet(ctx context.Context, req BetRequest) (domain.Bet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateBet(req, l.snap.Balance); err != nil {
		metrics.BetsRejected.WithLabelValues("place_bet", err.Error()).Inc()
		return domain.Bet{}, err
	}

	bet := domain.Bet{
		ID:              len(l.snap.Bets) + 1,
		Date:            l.now().UTC(),
		Event:           req.Event,
		Market:          req.Market,
		MarketID:        req.MarketID,
		Category:        req.Category,
		Outcome:         req.Outcome,
		Amount:          req.Amount,
		Price:           req.Price,
		CurrentPrice:    req.Price,
		PotentialPayout: req.Amount.Div(req.Price),
		Status:          domain.BetStatusOpen,
	}

	l.snap.Balance = l.snap.Balance.Sub(req.Amount)
	l.snap.Bets = append(l.snap.Bets, bet)
	l.persist(ctx, "place_bet")

	metrics.BetsPlaced.WithLabelValues(l.profile).Inc()
	slog.Info("bet placed",
		"profile", l.profile,
		"bet_id", bet.ID,
		"market_id", bet.MarketID,
		"outcome", bet.Outcome,
		"amount", bet.Amount.String(),
		"price", bet.Price.String(),
		"payout", bet.PotentialPayout.String(),
	)

	if l.events != nil {
		if err := l.events.BetPlaced(ctx, l.profile, bet); err != nil {
			slog.Warn("ledger: publish bet placed failed", "bet_id", bet.ID, "err", err)
		}
	}
	return bet, nil
}

// AddFunds credits amount to the balance and returns the new balance.
func (l *Ledger) AddFunds(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !amount.IsPositive() {
		metrics.BetsRejected.WithLabelValues("add_funds", domain.MsgAmountNotPositive).Inc()
		return l.snap.Balance, domain.NewValidationError(domain.MsgAmountNotPositive)
	}

	l.snap.Balance = l.snap.Balance.Add(amount)
	l.persist(ctx, "add_funds")
	slog.Info("funds added", "profile", l.profile, "amount", amount.String(), "balance", l.snap.Balance.String())
	return l.snap.Balance, nil
}

// Portfolio returns every bet, most recent first. Ties on date keep the
// higher ID first.
func (l *Ledger) Portfolio() []domain.Bet {
	l.mu.Lock()
	bets := l.snap.Clone().Bets
	l.mu.Unlock()

	sort.SliceStable(bets, func(i, j int) bool {
		if !bets[i].Date.Equal(bets[j].Date) {
			return bets[i].Date.After(bets[j].Date)
		}
		return bets[i].ID > bets[j].ID
	})
	return bets
}

// Summary aggregates the ledger for display.
func (l *Ledger) Summary() domain.PortfolioSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := domain.PortfolioSummary{Balance: l.snap.Balance}
	for _, b := range l.snap.Bets {
		switch b.Status {
		case domain.BetStatusOpen:
			s.OpenBets++
			s.OpenStake = s.OpenStake.Add(b.Amount)
			s.OpenValue = s.OpenValue.Add(b.MarkValue())
		case domain.BetStatusWon:
			s.WonBets++
			s.RealizedPnL = s.RealizedPnL.Add(b.PotentialPayout.Sub(b.Amount))
		case domain.BetStatusLost:
			s.LostBets++
			s.RealizedPnL = s.RealizedPnL.Sub(b.Amount)
		}
	}
	return s
}

// persist guarda el snapshot completo. Debe llamarse con mu tomado.
func (l *Ledger) persist(ctx context.Context, op string) {
	if err := l.store.Save(ctx, l.snap.Clone()); err != nil {
		metrics.StorageFailures.WithLabelValues("save").Inc()
		slog.Warn("ledger save failed, change is not durable",
			"profile", l.profile,
			"op", op,
			"err", err,
		)
	}
}

func validateBet(req BetRequest, balance decimal.Decimal) error {
	if !req.Amount.IsPositive() {
		return domain.NewValidationError(domain.MsgAmountNotPositive)
	}
	if !req.Price.IsPositive() || req.Price.GreaterThan(decimal.NewFromInt(1)) {
		return domain.NewValidationError(domain.MsgPriceOutOfRange)
	}
	if req.Amount.GreaterThan(balance) {
		return domain.NewValidationError(domain.MsgInsufficientFunds)
	}
	return nil
}
