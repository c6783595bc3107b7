package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WinnerThreshold es el precio a partir del cual un outcome se considera
// liquidado a $1. Es una heurística: solo se usa si el feed no trae un ganador explícito.
var WinnerThreshold = decimal.RequireFromString("0.99")

// MarketDetails is the fixed shape of a single upstream market once the feed
// boundary has decoded it. Outcomes and Prices are index-paired.
type MarketDetails struct {
	ID         string
	Question   string
	Outcomes   []string
	Prices     []decimal.Decimal
	Closed     bool
	ResolvedBy string
	// Winner is the authoritative winning outcome when the upstream payload
	// carries one. Empty otherwise.
	Winner string
	// PricesMalformed is set when outcomes/prices could not be decoded.
	PricesMalformed bool
	EndDate         time.Time
}

// IsResolved reports whether upstream marks the market closed or names a resolver.
func (m MarketDetails) IsResolved() bool {
	return m.Closed || m.ResolvedBy != ""
}

// PriceOf devuelve el precio emparejado con el outcome dado (match exacto).
func (m MarketDetails) PriceOf(outcome string) (decimal.Decimal, bool) {
	for i, label := range m.Outcomes {
		if label != outcome {
			continue
		}
		if i >= len(m.Prices) {
			return decimal.Zero, false
		}
		return m.Prices[i], true
	}
	return decimal.Zero, false
}

// WinningOutcome determines the settled outcome of a resolved market.
// An authoritative Winner that matches a label wins; otherwise the first
// outcome priced at or above WinnerThreshold. Returns false if neither applies.
func (m MarketDetails) WinningOutcome() (string, bool) {
	if m.Winner != "" {
		for _, label := range m.Outcomes {
			if label == m.Winner {
				return label, true
			}
		}
	}
	for i, p := range m.Prices {
		if i >= len(m.Outcomes) {
			break
		}
		if p.GreaterThanOrEqual(WinnerThreshold) {
			return m.Outcomes[i], true
		}
	}
	return "", false
}

// Event is an upstream event grouping one or more markets.
type Event struct {
	ID          string
	Title       string
	Description string
	EndDate     time.Time
	Markets     []MarketDetails
}

// Tag is an upstream category tag.
type Tag struct {
	ID    string
	Label string
	Slug  string
}
