package storage

// sqlite.go: backend local en SQLite (pure Go, sin CGo).
//
// Una fila por perfil en `portfolios`, con el documento JSON completo en `data`.
// Las escrituras son UPSERT por nombre de perfil: sobrescribir es idempotente
// y nunca duplica filas.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS portfolios (
    name       TEXT PRIMARY KEY,
    data       TEXT     NOT NULL,
    updated_at DATETIME NOT NULL
);
`

// SQLiteStorage implementa ports.SnapshotStore sobre SQLite.
type SQLiteStorage struct {
	db      *sql.DB
	profile string
	owned   bool
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path, profile string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db, profile: profile, owned: true}, nil
}

// ForProfile devuelve un handle para otro perfil sobre la misma conexión.
// Cerrar el handle derivado no cierra la base de datos.
func (s *SQLiteStorage) ForProfile(profile string) *SQLiteStorage {
	return &SQLiteStorage{db: s.db, profile: profile}
}

func (s *SQLiteStorage) Load(ctx context.Context) (domain.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM portfolios WHERE name = ? LIMIT 1`, s.profile,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.SQLiteStorage.Load: query %q: %w", s.profile, err)
	}

	snap, err := decodeSnapshot([]byte(data))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.SQLiteStorage.Load: %q: %w", s.profile, err)
	}
	return snap, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, false)
	if err != nil {
		return fmt.Errorf("storage.SQLiteStorage.Save: encode: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO portfolios (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at`,
		s.profile, string(data), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.SQLiteStorage.Save: upsert %q: %w", s.profile, err)
	}
	return nil
}

func (s *SQLiteStorage) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM portfolios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage.SQLiteStorage.ListProfiles: query: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("storage.SQLiteStorage.ListProfiles: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close cierra la conexión si este handle la abrió.
func (s *SQLiteStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
