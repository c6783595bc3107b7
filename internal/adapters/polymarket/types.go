package polymarket

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DTOs raw de la Gamma API. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// flexString acepta un string o un número JSON (Gamma mezcla ambos en los IDs).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// gammaMarket es un mercado de GET /markets/{id} o embebido en un evento.
// outcomes y outcomePrices llegan a veces como arrays y a veces como un
// string con el array JSON codificado: se guardan raw y se decodifican en mapping.go.
type gammaMarket struct {
	ID            flexString      `json:"id"`
	Question      string          `json:"question"`
	ConditionID   string          `json:"conditionId"`
	Outcomes      json.RawMessage `json:"outcomes"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	Closed        bool            `json:"closed"`
	Active        bool            `json:"active"`
	ResolvedBy    *string         `json:"resolvedBy"`
	EndDate       string          `json:"endDate"`
	EndDateISO    string          `json:"endDateIso"`
	Tokens        []gammaToken    `json:"tokens"`
}

// gammaToken aparece en algunos payloads; winner es el único campo de
// resolución explícito que expone el upstream.
type gammaToken struct {
	Outcome string `json:"outcome"`
	Winner  bool   `json:"winner"`
}

// gammaEvent es un item de GET /events.
type gammaEvent struct {
	ID          flexString    `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	EndDate     string        `json:"endDate"`
	Closed      bool          `json:"closed"`
	Markets     []gammaMarket `json:"markets"`
}

// gammaTag es un item de GET /tags.
type gammaTag struct {
	ID    flexString `json:"id"`
	Label string     `json:"label"`
	Slug  string     `json:"slug"`
}

// gammaSport es un item de GET /sports; tags es una lista separada por comas.
type gammaSport struct {
	Sport string `json:"sport"`
	Tags  string `json:"tags"`
}

// decodeStringList decodifica un array JSON nativo o un string que contiene
// un array JSON. Los elementos pueden ser strings o números.
func decodeStringList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode encoded list: %w", err)
		}
		raw = json.RawMessage(inner)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	out := make([]string, 0, len(items))
	for i, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case json.Number:
			out = append(out, v.String())
		default:
			return nil, fmt.Errorf("decode list: item %d has type %T", i, it)
		}
	}
	return out, nil
}
