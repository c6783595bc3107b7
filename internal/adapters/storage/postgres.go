package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// PostgresStorage keeps one row per profile in a JSONB table. JSONB numbers
// are NUMERIC, so decimal amounts keep their exact precision.
type PostgresStorage struct {
	pool    *pgxpool.Pool
	table   string // already sanitized
	profile string
	owned   bool
}

// NewPostgresStorage conecta con dsn y crea la tabla si no existe.
func NewPostgresStorage(ctx context.Context, dsn, table, profile string) (*PostgresStorage, error) {
	if table == "" {
		table = defaultTable
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewPostgresStorage: connect: %w", err)
	}

	s := &PostgresStorage{
		pool:    pool,
		table:   pgx.Identifier{table}.Sanitize(),
		profile: profile,
		owned:   true,
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name       TEXT PRIMARY KEY,
			data       JSONB       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage.NewPostgresStorage: apply schema: %w", err)
	}
	return s, nil
}

// ForProfile devuelve un handle para otro perfil sobre el mismo pool.
func (s *PostgresStorage) ForProfile(profile string) *PostgresStorage {
	return &PostgresStorage{pool: s.pool, table: s.table, profile: profile}
}

func (s *PostgresStorage) Load(ctx context.Context) (domain.Snapshot, error) {
	var data string
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT data::TEXT FROM %s WHERE name = $1 LIMIT 1`, s.table),
		s.profile,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.PostgresStorage.Load: %q: %w", s.profile, err)
	}

	snap, err := decodeSnapshot([]byte(data))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.PostgresStorage.Load: %q: %w", s.profile, err)
	}
	return snap, nil
}

func (s *PostgresStorage) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, false)
	if err != nil {
		return fmt.Errorf("storage.PostgresStorage.Save: encode: %w", err)
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (name, data, updated_at) VALUES ($1, $2::JSONB, now())
		ON CONFLICT (name) DO UPDATE SET
			data       = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`, s.table),
		s.profile, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage.PostgresStorage.Save: upsert %q: %w", s.profile, err)
	}
	return nil
}

func (s *PostgresStorage) ListProfiles(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, s.table))
	if err != nil {
		return nil, fmt.Errorf("storage.PostgresStorage.ListProfiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("storage.PostgresStorage.ListProfiles: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresStorage) Close() error {
	if s.owned {
		s.pool.Close()
	}
	return nil
}
