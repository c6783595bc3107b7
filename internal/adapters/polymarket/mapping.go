package polymarket

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// Gamma usa varios formatos de fecha según el endpoint.
var gammaTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07",
	"2006-01-02",
}

// parseGammaTime devuelve zero time si el string está vacío o no se puede parsear.
func parseGammaTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range gammaTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// mapMarket convierte un gammaMarket a domain.MarketDetails.
// outcomes/outcomePrices se decodifican una sola vez aquí; si fallan, el
// mercado queda con PricesMalformed y sin precios.
func mapMarket(r gammaMarket) domain.MarketDetails {
	m := domain.MarketDetails{
		ID:       string(r.ID),
		Question: r.Question,
		Closed:   r.Closed,
	}
	if r.ResolvedBy != nil {
		m.ResolvedBy = strings.TrimSpace(*r.ResolvedBy)
	}

	m.EndDate = parseGammaTime(r.EndDate)
	if m.EndDate.IsZero() {
		m.EndDate = parseGammaTime(r.EndDateISO)
	}

	for _, tok := range r.Tokens {
		if tok.Winner {
			m.Winner = tok.Outcome
			break
		}
	}

	outcomes, err := decodeStringList(r.Outcomes)
	if err != nil {
		m.PricesMalformed = true
		return m
	}
	m.Outcomes = outcomes

	rawPrices, err := decodeStringList(r.OutcomePrices)
	if err != nil {
		m.PricesMalformed = true
		return m
	}
	prices := make([]decimal.Decimal, 0, len(rawPrices))
	for _, p := range rawPrices {
		v, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			m.PricesMalformed = true
			return m
		}
		prices = append(prices, v)
	}
	m.Prices = prices
	return m
}

// mapEvent convierte un gammaEvent a domain.Event.
func mapEvent(r gammaEvent) domain.Event {
	e := domain.Event{
		ID:          string(r.ID),
		Title:       r.Title,
		Description: r.Description,
		EndDate:     parseGammaTime(r.EndDate),
		Markets:     make([]domain.MarketDetails, 0, len(r.Markets)),
	}
	for _, gm := range r.Markets {
		e.Markets = append(e.Markets, mapMarket(gm))
	}
	return e
}

func mapTag(r gammaTag) domain.Tag {
	return domain.Tag{ID: string(r.ID), Label: r.Label, Slug: r.Slug}
}
