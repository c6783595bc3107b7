package domain

import "errors"

var (
	// ErrSnapshotNotFound is returned by a SnapshotStore when the profile has no state yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrMarketNotFound is returned by a MarketLookup for an unknown market ID.
	ErrMarketNotFound = errors.New("market not found")
)

// Mensajes de validación que se muestran tal cual al usuario.
const (
	MsgInsufficientFunds = "Insufficient funds"
	MsgAmountNotPositive = "Amount must be positive."
	MsgPriceOutOfRange   = "Price must be between 0 and 1."
	MsgBetPlaced         = "Bet placed successfully"
)

// ValidationError is a local, recoverable rejection of a ledger operation.
// The ledger is left untouched when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError crea un ValidationError con el mensaje dado.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
