package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/polysim/internal/adapters/storage"
)

// Config es la configuración completa de polysim.
type Config struct {
	Profile string        `yaml:"profile"`
	Storage StorageConfig `yaml:"storage"`
	API     APIConfig     `yaml:"api"`
	Advisor AdvisorConfig `yaml:"advisor"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig elige el backend. backend=auto usa supabase si hay URL y key, si no file.
type StorageConfig struct {
	Backend    string      `yaml:"backend"` // auto | file | supabase | postgres | sqlite | redis | memory
	Dir        string      `yaml:"dir"`     // directorio de los bets*.json
	SQLitePath string      `yaml:"sqlite_path"`
	Table      string      `yaml:"table"` // supabase / postgres
	Supabase   RemoteCreds `yaml:"supabase"`
	Postgres   PGConfig    `yaml:"postgres"`
	Redis      RedisConfig `yaml:"redis"`
}

// RemoteCreds normalmente vienen de SUPABASE_URL / SUPABASE_KEY.
type RemoteCreds struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type PGConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// APIConfig contiene el base URL de Gamma y los reintentos del cliente.
type APIConfig struct {
	GammaBase string `yaml:"gamma_base"`
	Retries   int    `yaml:"retries"`
}

// AdvisorConfig configura el modelo OpenAI-compatible.
type AdvisorConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Mode           string  `yaml:"mode"` // full | quick
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// KafkaConfig: sin brokers no se publican eventos.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// MetricsConfig: addr vacío desactiva el servidor de métricas.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// WatchConfig controla el loop de reconciliación.
type WatchConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	StopFile        string `yaml:"stop_file"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Un YAML inexistente no es error: se usan defaults y env.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// WatchInterval devuelve el intervalo del watch loop como time.Duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

// AdvisorTimeout devuelve el timeout por llamada al modelo.
func (c *Config) AdvisorTimeout() time.Duration {
	return time.Duration(c.Advisor.TimeoutSeconds) * time.Second
}

// Resolve traduce la configuración a las opciones de storage.Open para profile.
func (s StorageConfig) Resolve(profile string) storage.Options {
	kind := storage.Kind(strings.ToLower(s.Backend))
	if kind == "auto" || kind == "" {
		kind = storage.KindFile
		if s.Supabase.URL != "" && s.Supabase.Key != "" {
			kind = storage.KindSupabase
		}
	}

	opts := storage.Options{
		Kind:      kind,
		Profile:   profile,
		RemoteURL: s.Supabase.URL,
		RemoteKey: s.Supabase.Key,
		Table:     s.Table,
		DSN:       s.Postgres.DSN,
		Redis: storage.RedisOptions{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
		},
	}
	switch kind {
	case storage.KindFile:
		opts.Path = storage.FilePath(s.Dir, profile)
	case storage.KindSQLite:
		opts.Path = s.SQLitePath
	}
	return opts
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYSIM_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv("POLYSIM_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Storage.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		cfg.Storage.Supabase.Key = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Redis.DB = n
		}
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Profile == "" {
		cfg.Profile = "Default"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "auto"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "."
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "polysim.db"
	}
	if cfg.Storage.Table == "" {
		cfg.Storage.Table = "portfolios"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.Retries < 0 {
		cfg.API.Retries = 0
	}
	if cfg.Advisor.BaseURL == "" {
		cfg.Advisor.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "deepseek-chat"
	}
	if cfg.Advisor.Mode == "" {
		cfg.Advisor.Mode = "full"
	}
	if cfg.Advisor.Temperature <= 0 {
		cfg.Advisor.Temperature = 1.0
	}
	if cfg.Advisor.TimeoutSeconds <= 0 {
		cfg.Advisor.TimeoutSeconds = 120
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "polysim.ledger"
	}
	if cfg.Watch.IntervalSeconds <= 0 {
		cfg.Watch.IntervalSeconds = 300
	}
	if cfg.Watch.StopFile == "" {
		cfg.Watch.StopFile = "STOP"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch storage.Kind(strings.ToLower(c.Storage.Backend)) {
	case "auto", storage.KindFile, storage.KindSupabase, storage.KindPostgres,
		storage.KindSQLite, storage.KindRedis, storage.KindMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Advisor.Mode {
	case "full", "quick":
	default:
		return fmt.Errorf("unknown advisor mode %q", c.Advisor.Mode)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
