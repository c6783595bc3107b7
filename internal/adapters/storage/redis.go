package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const defaultKeyPrefix = "polysim:portfolio"

// RedisStorage guarda el documento de cada perfil en la clave <prefix>:<perfil>, sin TTL.
type RedisStorage struct {
	client  *redis.Client
	prefix  string
	profile string
	owned   bool
}

// RedisOptions configures NewRedisStorage.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStorage crea el cliente y verifica la conexión con PING.
func NewRedisStorage(ctx context.Context, opts RedisOptions, profile string) (*RedisStorage, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("storage.NewRedisStorage: redis addr is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage.NewRedisStorage: ping %s: %w", opts.Addr, err)
	}
	return &RedisStorage{client: client, prefix: prefix, profile: profile, owned: true}, nil
}

// ForProfile devuelve un handle para otro perfil sobre el mismo cliente.
func (s *RedisStorage) ForProfile(profile string) *RedisStorage {
	return &RedisStorage{client: s.client, prefix: s.prefix, profile: profile}
}

func (s *RedisStorage) key(profile string) string {
	return fmt.Sprintf("%s:%s", s.prefix, profile)
}

func (s *RedisStorage) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(s.profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.RedisStorage.Load: %q: %w", s.profile, err)
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.RedisStorage.Load: %q: %w", s.profile, err)
	}
	return snap, nil
}

func (s *RedisStorage) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, false)
	if err != nil {
		return fmt.Errorf("storage.RedisStorage.Save: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(s.profile), data, 0).Err(); err != nil {
		return fmt.Errorf("storage.RedisStorage.Save: %q: %w", s.profile, err)
	}
	return nil
}

func (s *RedisStorage) ListProfiles(ctx context.Context) ([]string, error) {
	var (
		names  []string
		cursor uint64
	)
	match := s.prefix + ":*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("storage.RedisStorage.ListProfiles: scan: %w", err)
		}
		for _, k := range keys {
			names = append(names, strings.TrimPrefix(k, s.prefix+":"))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
