// Package advisory conecta el advisor con el feed y el ledger: describe un
// evento para el modelo y convierte sus recomendaciones en apuestas simuladas.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/application/ledger"
	"github.com/alejandrodnm/polysim/internal/domain"
	"github.com/alejandrodnm/polysim/internal/ports"
)

// DefaultStake se usa cuando el modelo no sugiere un importe positivo.
var DefaultStake = decimal.NewFromInt(10)

var (
	ErrNoMatchingMarket = errors.New("could not find matching market")
	ErrNoOutcomePrice   = errors.New("no price for predicted outcome")
)

// BetPlacer es la única vía de una recomendación hacia el balance.
type BetPlacer interface {
	PlaceBet(ctx context.Context, req ledger.BetRequest) (domain.Bet, error)
}

// Placement es el resultado de intentar colocar una recomendación.
type Placement struct {
	Recommendation domain.Recommendation
	Bet            domain.Bet
	Err            error
}

// Service orquesta análisis y colocación.
type Service struct {
	advisor ports.Advisor
}

func NewService(advisor ports.Advisor) *Service {
	return &Service{advisor: advisor}
}

// Analyze describe el evento y lo pasa al advisor.
func (s *Service) Analyze(ctx context.Context, event domain.Event, mode string) (domain.Analysis, error) {
	a, err := s.advisor.Analyze(ctx, DescribeEvent(event), mode)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("advisory.Analyze %s: %w", event.ID, err)
	}
	return a, nil
}

// DescribeEvent arma el texto libre que recibe el modelo.
func DescribeEvent(e domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\nDescription: %s\n", e.Title, e.Description)
	if !e.EndDate.IsZero() {
		fmt.Fprintf(&b, "Ends: %s\n", e.EndDate.UTC().Format("2006-01-02 15:04 MST"))
	}
	if len(e.Markets) == 0 {
		return b.String()
	}
	b.WriteString("Markets:\n")
	for _, m := range e.Markets {
		fmt.Fprintf(&b, "- Market: %s, Outcomes: %s\n", m.Question, formatOutcomes(m))
	}
	return b.String()
}

func formatOutcomes(m domain.MarketDetails) string {
	if m.PricesMalformed || len(m.Outcomes) == 0 {
		return "N/A"
	}
	parts := make([]string, 0, len(m.Outcomes))
	for i, o := range m.Outcomes {
		if i < len(m.Prices) {
			parts = append(parts, fmt.Sprintf("%s: %s", o, m.Prices[i].String()))
		} else {
			parts = append(parts, o)
		}
	}
	return strings.Join(parts, ", ")
}

// PlaceRecommendations coloca cada recomendación del análisis contra el mercado
// del evento cuya pregunta coincide. El precio de entrada es el precio actual del
// outcome predicho; sin mercado o sin precio la recomendación se salta.
// Los rechazos del ledger se devuelven en Placement.Err, nunca abortan el resto.
func (s *Service) PlaceRecommendations(ctx context.Context, placer BetPlacer, event domain.Event, analysis domain.Analysis, category string) []Placement {
	out := make([]Placement, 0, len(analysis.Bets))
	for _, rec := range analysis.Bets {
		p := Placement{Recommendation: rec}

		m, ok := matchMarket(event.Markets, rec.MarketQuestion)
		if !ok {
			p.Err = fmt.Errorf("%w: %q", ErrNoMatchingMarket, rec.MarketQuestion)
			out = append(out, p)
			continue
		}
		price, ok := m.PriceOf(rec.Prediction)
		if !ok {
			p.Err = fmt.Errorf("%w: %q in %q", ErrNoOutcomePrice, rec.Prediction, m.Question)
			out = append(out, p)
			continue
		}

		amount := rec.RecommendedAmount
		if !amount.IsPositive() {
			amount = DefaultStake
		}

		bet, err := placer.PlaceBet(ctx, ledger.BetRequest{
			Market:   m.Question,
			Outcome:  rec.Prediction,
			Amount:   amount,
			Price:    price,
			Event:    event.Title,
			MarketID: m.ID,
			Category: category,
		})
		if err != nil {
			slog.Info("recommendation rejected", "market", m.Question, "outcome", rec.Prediction, "err", err)
			p.Err = err
		} else {
			p.Bet = bet
		}
		out = append(out, p)
	}
	return out
}

// matchMarket busca por pregunta exacta, luego por substring; un evento de un solo
// mercado acepta cualquier pregunta.
func matchMarket(markets []domain.MarketDetails, question string) (domain.MarketDetails, bool) {
	q := strings.TrimSpace(question)
	for _, m := range markets {
		if m.Question == q {
			return m, true
		}
	}
	if q != "" {
		for _, m := range markets {
			if strings.Contains(m.Question, q) {
				return m, true
			}
		}
	}
	if len(markets) == 1 {
		return markets[0], true
	}
	return domain.MarketDetails{}, false
}
