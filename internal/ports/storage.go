package ports

import (
	"context"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// SnapshotStore persiste el snapshot completo de un perfil.
// Cada instancia está ligada a un único perfil.
type SnapshotStore interface {
	// Load devuelve el snapshot guardado, o domain.ErrSnapshotNotFound si el
	// perfil todavía no tiene estado.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save reemplaza el documento completo del perfil. No hay escrituras parciales.
	Save(ctx context.Context, snap domain.Snapshot) error

	// Close libera la conexión subyacente.
	Close() error
}

// ProfileLister enumerates the profiles a backend holds state for.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]string, error)
}
