package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polysim/config"
	"github.com/alejandrodnm/polysim/internal/adapters/events"
	"github.com/alejandrodnm/polysim/internal/adapters/notify"
	"github.com/alejandrodnm/polysim/internal/adapters/polymarket"
	"github.com/alejandrodnm/polysim/internal/adapters/storage"
	"github.com/alejandrodnm/polysim/internal/application/ledger"
	"github.com/alejandrodnm/polysim/internal/ports"
)

const usage = `usage: polysim [flags] <command> [command flags]

commands:
  portfolio   show balance, summary and bets
  bet         place a simulated bet
  fund        add virtual funds
  settle      reprice open bets and settle resolved markets
  watch       run settle on an interval until Ctrl+C or a STOP file
  profiles    list stored profiles
  events      list upcoming events from the market feed
  analyze     ask the advisor about upcoming events (--place to bet)

flags:
`

// publisher es un ports.LedgerEvents que además se cierra al salir.
type publisher interface {
	ports.LedgerEvents
	Close() error
}

// app agrupa las dependencias compartidas por los subcomandos.
type app struct {
	cfg     *config.Config
	profile string
	store   storage.Store
	feed    *polymarket.Client
	console *notify.Console
	events  publisher
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	profile := flag.String("profile", "", "profile name (overrides config)")
	backend := flag.String("storage", "", "storage backend: auto|file|supabase|postgres|sqlite|redis|memory")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *profile != "" {
		cfg.Profile = *profile
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "err", err)
		os.Exit(1)
	}
	defer a.close()

	slog.Debug("polysim starting",
		"command", cmd,
		"profile", a.profile,
		"storage", cfg.Storage.Backend,
	)

	if err := a.run(ctx, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	opts := cfg.Storage.Resolve(cfg.Profile)
	store, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", opts.Kind, err)
	}

	var pub publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			store.Close()
			return nil, err
		}
		pub = p
	}

	return &app{
		cfg:     cfg,
		profile: cfg.Profile,
		store:   store,
		feed:    polymarket.NewClient(cfg.API.GammaBase).SetRetries(cfg.API.Retries),
		console: notify.NewConsole(),
		events:  pub,
	}, nil
}

// ledger carga el ledger del perfil activo.
func (a *app) ledger(ctx context.Context) *ledger.Ledger {
	return ledger.New(ctx, a.profile, a.store, ledger.WithEvents(a.events))
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "portfolio":
		return a.runPortfolio(ctx, args)
	case "bet":
		return a.runBet(ctx, args)
	case "fund":
		return a.runFund(ctx, args)
	case "settle":
		return a.runSettle(ctx, args)
	case "watch":
		return a.runWatch(ctx, args)
	case "profiles":
		return a.runProfiles(ctx, args)
	case "events":
		return a.runEvents(ctx, args)
	case "analyze":
		return a.runAnalyze(ctx, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			slog.Warn("closing event publisher", "err", err)
		}
		a.events = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("closing storage", "err", err)
		}
		a.store = nil
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Los logs van a stderr: stdout queda para las tablas.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
