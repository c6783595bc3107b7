package ports

import (
	"context"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// LedgerEvents recibe notificaciones de cambios del ledger ya persistidos.
// Los errores se registran y nunca revierten la operación.
type LedgerEvents interface {
	BetPlaced(ctx context.Context, profile string, bet domain.Bet) error
	BetSettled(ctx context.Context, profile string, bet domain.Bet) error
}
