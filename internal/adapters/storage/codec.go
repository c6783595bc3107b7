package storage

// codec.go: formato JSON del snapshot, compartido por todos los backends.
//
// Los importes se serializan como números JSON usando el texto exacto del
// decimal (json.Number), así que un round-trip no pierde precisión.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/domain"
)

type snapshotDoc struct {
	Balance json.Number `json:"balance"`
	Bets    []betDoc    `json:"bets"`
}

type betDoc struct {
	ID              int         `json:"id"`
	Date            string      `json:"date"`
	Event           string      `json:"event"`
	Market          string      `json:"market"`
	MarketID        *string     `json:"market_id"`
	Category        string      `json:"category"`
	Outcome         string      `json:"outcome"`
	Amount          json.Number `json:"amount"`
	Price           json.Number `json:"price"`
	CurrentPrice    json.Number `json:"current_price"`
	PotentialPayout json.Number `json:"potential_payout"`
	Status          string      `json:"status"`
	ResultCheckedAt *string     `json:"result_checked_at"`
}

// timeLayouts are tried in order when reading dates. Documents written by
// older clients carry naive local timestamps with microseconds.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// encodeSnapshot serializa el snapshot. indent=true para el backend de archivo.
func encodeSnapshot(snap domain.Snapshot, indent bool) ([]byte, error) {
	doc := snapshotDoc{
		Balance: json.Number(snap.Balance.String()),
		Bets:    make([]betDoc, 0, len(snap.Bets)),
	}
	for _, b := range snap.Bets {
		d := betDoc{
			ID:              b.ID,
			Date:            b.Date.UTC().Format(time.RFC3339Nano),
			Event:           b.Event,
			Market:          b.Market,
			Category:        b.Category,
			Outcome:         b.Outcome,
			Amount:          json.Number(b.Amount.String()),
			Price:           json.Number(b.Price.String()),
			CurrentPrice:    json.Number(b.CurrentPrice.String()),
			PotentialPayout: json.Number(b.PotentialPayout.String()),
			Status:          string(b.Status),
		}
		if b.MarketID != "" {
			id := b.MarketID
			d.MarketID = &id
		}
		if b.ResultCheckedAt != nil {
			s := b.ResultCheckedAt.UTC().Format(time.RFC3339Nano)
			d.ResultCheckedAt = &s
		}
		doc.Bets = append(doc.Bets, d)
	}

	if indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// decodeSnapshot parsea un documento. Un balance ausente vale el saldo por defecto.
func decodeSnapshot(data []byte) (domain.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc snapshotDoc
	if err := dec.Decode(&doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := domain.Snapshot{Balance: domain.DefaultBalance, Bets: make([]domain.Bet, 0, len(doc.Bets))}
	if doc.Balance != "" {
		bal, err := decimal.NewFromString(doc.Balance.String())
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode snapshot: balance: %w", err)
		}
		snap.Balance = bal
	}

	for i, d := range doc.Bets {
		b, err := decodeBet(d)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode snapshot: bet #%d: %w", i, err)
		}
		snap.Bets = append(snap.Bets, b)
	}
	return snap, nil
}

func decodeBet(d betDoc) (domain.Bet, error) {
	b := domain.Bet{
		ID:       d.ID,
		Event:    d.Event,
		Market:   d.Market,
		Category: d.Category,
		Outcome:  d.Outcome,
		Status:   domain.BetStatus(d.Status),
	}
	switch b.Status {
	case domain.BetStatusOpen, domain.BetStatusWon, domain.BetStatusLost:
	default:
		return domain.Bet{}, fmt.Errorf("unknown status %q", d.Status)
	}
	if d.MarketID != nil {
		b.MarketID = *d.MarketID
	}

	date, err := parseTime(d.Date)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("date: %w", err)
	}
	b.Date = date

	if d.ResultCheckedAt != nil && *d.ResultCheckedAt != "" {
		t, err := parseTime(*d.ResultCheckedAt)
		if err != nil {
			return domain.Bet{}, fmt.Errorf("result_checked_at: %w", err)
		}
		b.ResultCheckedAt = &t
	}

	fields := []struct {
		name string
		raw  json.Number
		dst  *decimal.Decimal
	}{
		{"amount", d.Amount, &b.Amount},
		{"price", d.Price, &b.Price},
		{"current_price", d.CurrentPrice, &b.CurrentPrice},
		{"potential_payout", d.PotentialPayout, &b.PotentialPayout},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw.String())
		if err != nil {
			return domain.Bet{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if d.CurrentPrice == "" {
		b.CurrentPrice = b.Price
	}
	return b, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		loc := time.UTC
		if layout != time.RFC3339Nano {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
