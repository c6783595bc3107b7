package polymarket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStringList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "native array", raw: `["Yes","No"]`, want: []string{"Yes", "No"}},
		{name: "encoded string", raw: `"[\"Yes\", \"No\"]"`, want: []string{"Yes", "No"}},
		{name: "numbers keep their text", raw: `[0.515, "0.485"]`, want: []string{"0.515", "0.485"}},
		{name: "null", raw: `null`, want: nil},
		{name: "empty", raw: ``, want: nil},
		{name: "object", raw: `{"a":1}`, wantErr: true},
		{name: "bool item", raw: `[true]`, wantErr: true},
		{name: "broken encoded string", raw: `"[\"Yes\""`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeStringList(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGammaTime(t *testing.T) {
	want := time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(parseGammaTime("2026-05-20T18:00:00Z")))
	assert.True(t, want.Equal(parseGammaTime("2026-05-20T20:00:00+02:00")))
	assert.True(t, want.Equal(parseGammaTime(" 2026-05-20T18:00:00 ")))
	assert.True(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC).Equal(parseGammaTime("2026-05-20")))

	assert.True(t, parseGammaTime("").IsZero())
	assert.True(t, parseGammaTime("next tuesday").IsZero())
}

func TestFlexString(t *testing.T) {
	var v struct {
		ID flexString `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 512}`), &v))
	assert.Equal(t, flexString("512"), v.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "0xabc"}`), &v))
	assert.Equal(t, flexString("0xabc"), v.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &v))
	assert.Equal(t, flexString(""), v.ID)
}

func TestMapMarket_MalformedKeepsIdentity(t *testing.T) {
	m := mapMarket(gammaMarket{
		ID:            "m9",
		Question:      "Will it rain?",
		Outcomes:      json.RawMessage(`["Yes","No"]`),
		OutcomePrices: json.RawMessage(`["0.4","abc"]`),
		Closed:        true,
	})
	assert.Equal(t, "m9", m.ID)
	assert.True(t, m.Closed)
	assert.True(t, m.PricesMalformed)
	assert.Empty(t, m.Prices)
}
