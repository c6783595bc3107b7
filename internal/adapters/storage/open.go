package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alejandrodnm/polysim/internal/ports"
)

// Kind identifica un backend de persistencia.
type Kind string

const (
	KindFile     Kind = "file"
	KindSupabase Kind = "supabase"
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
	KindRedis    Kind = "redis"
	KindMemory   Kind = "memory"
)

// Store is what every backend offers: snapshot persistence plus profile listing.
type Store interface {
	ports.SnapshotStore
	ports.ProfileLister
}

// Options is the fully resolved backend selection for one profile. It is
// built once by the caller (see config.StorageConfig.Resolve); Open never
// inspects the environment.
type Options struct {
	Kind    Kind
	Profile string

	Path string // file: document path; sqlite: database path

	RemoteURL string // supabase project URL
	RemoteKey string // supabase access key
	Table     string // supabase/postgres table

	DSN string // postgres

	Redis RedisOptions
}

// Open construye el backend descrito por opts. Nunca devuelve un Store
// no-nil junto con un error.
func Open(ctx context.Context, opts Options) (Store, error) {
	profile := opts.Profile
	if profile == "" {
		profile = defaultProfile
	}

	switch opts.Kind {
	case KindFile, "":
		path := opts.Path
		if path == "" {
			path = FileName(profile)
		}
		return NewFileStorage(path), nil
	case KindSupabase:
		s, err := NewSupabaseStorage(opts.RemoteURL, opts.RemoteKey, opts.Table, profile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindPostgres:
		s, err := NewPostgresStorage(ctx, opts.DSN, opts.Table, profile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindSQLite:
		path := opts.Path
		if path == "" {
			path = "polysim.db"
		}
		s, err := NewSQLiteStorage(path, profile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindRedis:
		s, err := NewRedisStorage(ctx, opts.Redis, profile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindMemory:
		return NewMemory(profile), nil
	default:
		return nil, fmt.Errorf("storage.Open: unknown kind %q", opts.Kind)
	}
}

// FilePath joins dir and the per-profile file name.
func FilePath(dir, profile string) string {
	return filepath.Join(dir, FileName(profile))
}
