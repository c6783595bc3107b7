package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polysim/internal/adapters/storage"
)

// clearEnv vacía las variables que Load lee, para que el entorno del runner no interfiera.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"POLYSIM_PROFILE", "POLYSIM_STORAGE", "SUPABASE_URL", "SUPABASE_KEY", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DEEPSEEK_API_KEY", "KAFKA_BROKERS",
		"METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Default", cfg.Profile)
	assert.Equal(t, "auto", cfg.Storage.Backend)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.API.GammaBase)
	assert.Equal(t, "deepseek-chat", cfg.Advisor.Model)
	assert.Equal(t, "polysim.ledger", cfg.Kafka.Topic)
	assert.Equal(t, 300, cfg.Watch.IntervalSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ShippedConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.API.Retries)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, "profile: bob\nlog:\n  level: warn\n")
	t.Setenv("POLYSIM_PROFILE", "alice")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Profile)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "sk-test", cfg.Advisor.APIKey)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeYAML(t, "storage: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeYAML(t, "storage:\n  backend: mongo\n"))
	assert.ErrorContains(t, err, "mongo")
}

func TestStorageConfig_Resolve(t *testing.T) {
	base := StorageConfig{Backend: "auto", Dir: "/data", SQLitePath: "x.db", Table: "portfolios"}

	t.Run("auto without credentials is file", func(t *testing.T) {
		opts := base.Resolve("Default")
		assert.Equal(t, storage.KindFile, opts.Kind)
		assert.Equal(t, filepath.Join("/data", "bets.json"), opts.Path)

		opts = base.Resolve("alice")
		assert.Equal(t, filepath.Join("/data", "bets_alice.json"), opts.Path)
	})

	t.Run("auto needs both url and key", func(t *testing.T) {
		s := base
		s.Supabase.URL = "https://x.supabase.co"
		assert.Equal(t, storage.KindFile, s.Resolve("Default").Kind)

		s.Supabase.Key = "anon"
		opts := s.Resolve("alice")
		assert.Equal(t, storage.KindSupabase, opts.Kind)
		assert.Equal(t, "alice", opts.Profile)
		assert.Equal(t, "https://x.supabase.co", opts.RemoteURL)
		assert.Equal(t, "portfolios", opts.Table)
	})

	t.Run("explicit sqlite", func(t *testing.T) {
		s := base
		s.Backend = "SQLite"
		opts := s.Resolve("Default")
		assert.Equal(t, storage.KindSQLite, opts.Kind)
		assert.Equal(t, "x.db", opts.Path)
	})
}
