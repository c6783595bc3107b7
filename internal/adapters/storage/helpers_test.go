package storage_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polysim/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleSnapshot() domain.Snapshot {
	placed := time.Date(2026, 3, 1, 12, 30, 15, 123456789, time.UTC)
	checked := placed.Add(48 * time.Hour)
	return domain.Snapshot{
		Balance: d("1150.0000000000000001"),
		Bets: []domain.Bet{
			{
				ID: 1, Date: placed, Event: "Event X", Market: "Will X win?", MarketID: "m1",
				Category: "Politics", Outcome: "Yes",
				Amount: d("100"), Price: d("0.40"), CurrentPrice: d("1"),
				PotentialPayout: d("250"), Status: domain.BetStatusWon, ResultCheckedAt: &checked,
			},
			{
				ID: 2, Date: placed.Add(time.Hour), Event: "Event Y", Market: "Will Y win?",
				Outcome: "No",
				Amount: d("10"), Price: d("0.3"), CurrentPrice: d("0.3"),
				PotentialPayout: d("10").Div(d("0.3")), Status: domain.BetStatusOpen,
			},
		},
	}
}

// assertSnapshotEqual compara campo a campo; los decimales se comparan por valor.
func assertSnapshotEqual(t *testing.T, want, got domain.Snapshot) {
	t.Helper()
	assert.True(t, want.Balance.Equal(got.Balance), "balance: want %s got %s", want.Balance, got.Balance)
	require.Len(t, got.Bets, len(want.Bets))
	for i := range want.Bets {
		w, g := want.Bets[i], got.Bets[i]
		assert.Equal(t, w.ID, g.ID)
		assert.True(t, w.Date.Equal(g.Date), "bet %d date", w.ID)
		assert.Equal(t, w.Event, g.Event)
		assert.Equal(t, w.Market, g.Market)
		assert.Equal(t, w.MarketID, g.MarketID)
		assert.Equal(t, w.Category, g.Category)
		assert.Equal(t, w.Outcome, g.Outcome)
		assert.True(t, w.Amount.Equal(g.Amount), "bet %d amount", w.ID)
		assert.True(t, w.Price.Equal(g.Price), "bet %d price", w.ID)
		assert.True(t, w.CurrentPrice.Equal(g.CurrentPrice), "bet %d current_price", w.ID)
		assert.True(t, w.PotentialPayout.Equal(g.PotentialPayout), "bet %d payout: want %s got %s", w.ID, w.PotentialPayout, g.PotentialPayout)
		assert.Equal(t, w.Status, g.Status)
		if w.ResultCheckedAt == nil {
			assert.Nil(t, g.ResultCheckedAt)
		} else {
			require.NotNil(t, g.ResultCheckedAt)
			assert.True(t, w.ResultCheckedAt.Equal(*g.ResultCheckedAt))
		}
	}
}
