package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polysim/internal/domain"
)

func prices(ps ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ps))
	for i, p := range ps {
		out[i] = decimal.RequireFromString(p)
	}
	return out
}

func TestMarketDetails_PriceOf(t *testing.T) {
	m := domain.MarketDetails{Outcomes: []string{"Yes", "No"}, Prices: prices("0.55", "0.45")}

	p, ok := m.PriceOf("No")
	assert.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("0.45")))

	_, ok = m.PriceOf("yes")
	assert.False(t, ok, "match is exact")

	short := domain.MarketDetails{Outcomes: []string{"Yes", "No"}, Prices: prices("0.55")}
	_, ok = short.PriceOf("No")
	assert.False(t, ok, "label without paired price")
}

func TestMarketDetails_WinningOutcome(t *testing.T) {
	tests := []struct {
		name   string
		market domain.MarketDetails
		want   string
		ok     bool
	}{
		{
			name:   "settled at one",
			market: domain.MarketDetails{Outcomes: []string{"Yes", "No"}, Prices: prices("1", "0")},
			want:   "Yes", ok: true,
		},
		{
			name:   "threshold inclusive",
			market: domain.MarketDetails{Outcomes: []string{"A", "B", "C"}, Prices: prices("0.005", "0.99", "0.005")},
			want:   "B", ok: true,
		},
		{
			name:   "first in list order wins ties",
			market: domain.MarketDetails{Outcomes: []string{"A", "B"}, Prices: prices("0.995", "0.999")},
			want:   "A", ok: true,
		},
		{
			name:   "below threshold",
			market: domain.MarketDetails{Outcomes: []string{"Yes", "No"}, Prices: prices("0.989", "0.011")},
			ok:     false,
		},
		{
			name:   "explicit winner preferred",
			market: domain.MarketDetails{Outcomes: []string{"Yes", "No"}, Prices: prices("1", "0"), Winner: "No"},
			want:   "No", ok: true,
		},
		{
			name:   "unknown explicit winner falls back to prices",
			market: domain.MarketDetails{Outcomes: []string{"Yes", "No"}, Prices: prices("1", "0"), Winner: "Maybe"},
			want:   "Yes", ok: true,
		},
		{
			name:   "more prices than labels",
			market: domain.MarketDetails{Outcomes: []string{"Yes"}, Prices: prices("0", "1")},
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.market.WinningOutcome()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarketDetails_IsResolved(t *testing.T) {
	assert.False(t, domain.MarketDetails{}.IsResolved())
	assert.True(t, domain.MarketDetails{Closed: true}.IsResolved())
	assert.True(t, domain.MarketDetails{ResolvedBy: "0xabc"}.IsResolved())
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	snap := domain.DefaultSnapshot()
	snap.Bets = append(snap.Bets, domain.Bet{ID: 1, Status: domain.BetStatusOpen})

	cp := snap.Clone()
	cp.Bets[0].Status = domain.BetStatusLost
	assert.Equal(t, domain.BetStatusOpen, snap.Bets[0].Status)
	assert.True(t, cp.Balance.Equal(decimal.NewFromInt(1000)))
}
