package domain

import "github.com/shopspring/decimal"

// Recommendation is one bet suggested by the advisory engine.
// It never touches the ledger directly; callers route it through Ledger.PlaceBet.
type Recommendation struct {
	MarketQuestion    string          `json:"market_question"`
	Prediction        string          `json:"prediction"`
	Confidence        float64         `json:"confidence"`
	Reasoning         string          `json:"reasoning"`
	FairValue         float64         `json:"fair_value"`
	Edge              string          `json:"edge"`
	RecommendedStake  string          `json:"recommended_stake"`
	RecommendedAmount decimal.Decimal `json:"recommended_amount"`
}

// Analysis is the structured output of one advisory call.
type Analysis struct {
	Bets    []Recommendation `json:"bets"`
	Summary string           `json:"summary"`
	// Error is set when the model output could not be parsed; Raw keeps a prefix of it.
	Error string `json:"-"`
	Raw   string `json:"-"`
}
