package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus representa el ciclo de vida de una apuesta simulada.
// Solo se permiten las transiciones OPEN → WON y OPEN → LOST.
type BetStatus string

const (
	BetStatusOpen BetStatus = "OPEN"
	BetStatusWon  BetStatus = "WON"
	BetStatusLost BetStatus = "LOST"
)

// IsTerminal devuelve true si la apuesta ya fue liquidada.
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusWon || s == BetStatusLost
}

// DefaultBalance es el saldo inicial de un perfil sin estado previo.
var DefaultBalance = decimal.NewFromInt(1000)

// Bet is one simulated wager against a market outcome at an entry price.
type Bet struct {
	ID              int
	Date            time.Time
	Event           string
	Market          string
	MarketID        string // empty = never reconcilable
	Category        string
	Outcome         string
	Amount          decimal.Decimal
	Price           decimal.Decimal
	CurrentPrice    decimal.Decimal
	PotentialPayout decimal.Decimal // amount / price, fixed at placement
	Status          BetStatus
	ResultCheckedAt *time.Time
}

// IsOpen reports whether the bet still awaits settlement.
func (b Bet) IsOpen() bool {
	return b.Status == BetStatusOpen
}

// MarkValue es el valor mark-to-market de la posición: contratos × precio actual.
func (b Bet) MarkValue() decimal.Decimal {
	return b.PotentialPayout.Mul(b.CurrentPrice)
}

// Snapshot is the whole-document persisted state of one profile.
type Snapshot struct {
	Balance decimal.Decimal
	Bets    []Bet
}

// DefaultSnapshot devuelve el estado de un perfil nuevo: $1000 y sin apuestas.
func DefaultSnapshot() Snapshot {
	return Snapshot{Balance: DefaultBalance, Bets: []Bet{}}
}

// Clone devuelve una copia profunda; los punteros de ResultCheckedAt no se comparten.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Balance: s.Balance, Bets: make([]Bet, len(s.Bets))}
	for i, b := range s.Bets {
		if b.ResultCheckedAt != nil {
			t := *b.ResultCheckedAt
			b.ResultCheckedAt = &t
		}
		out.Bets[i] = b
	}
	return out
}

// PortfolioSummary aggregates a profile's ledger for display.
type PortfolioSummary struct {
	Balance     decimal.Decimal
	OpenBets    int
	WonBets     int
	LostBets    int
	OpenStake   decimal.Decimal // stake locked in OPEN bets
	OpenValue   decimal.Decimal // mark-to-market of OPEN bets
	RealizedPnL decimal.Decimal // payouts of WON minus stakes of WON+LOST
}
