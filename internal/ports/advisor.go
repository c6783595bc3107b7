package ports

import (
	"context"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// Advisor turns a free-text market description into betting recommendations.
type Advisor interface {
	Analyze(ctx context.Context, details string, mode string) (domain.Analysis, error)
}
