package ports

import (
	"context"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// MarketLookup obtiene el estado actual de un mercado por ID.
// Devuelve domain.ErrMarketNotFound para IDs desconocidos.
type MarketLookup interface {
	GetMarket(ctx context.Context, marketID string) (domain.MarketDetails, error)
}

// EventFeed lists upstream events and resolves categories to tag IDs.
type EventFeed interface {
	FetchEvents(ctx context.Context, tagIDs []string, limit int) ([]domain.Event, error)
	ResolveTag(ctx context.Context, category string) ([]string, error)
}
