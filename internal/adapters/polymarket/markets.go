package polymarket

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// GetMarket obtiene un mercado por ID de GET /markets/{id}.
// Un 404 se mapea a domain.ErrMarketNotFound.
func (c *Client) GetMarket(ctx context.Context, id string) (domain.MarketDetails, error) {
	if id == "" {
		return domain.MarketDetails{}, fmt.Errorf("polymarket.GetMarket: %w", domain.ErrMarketNotFound)
	}

	endpoint := fmt.Sprintf("%s/markets/%s", c.gammaBase, url.PathEscape(id))
	var raw gammaMarket
	if err := c.get(ctx, endpoint, &raw); err != nil {
		if isNotFound(err) {
			return domain.MarketDetails{}, fmt.Errorf("polymarket.GetMarket %s: %w", id, domain.ErrMarketNotFound)
		}
		return domain.MarketDetails{}, fmt.Errorf("polymarket.GetMarket %s: %w", id, err)
	}

	m := mapMarket(raw)
	if m.ID == "" {
		m.ID = id
	}
	return m, nil
}
