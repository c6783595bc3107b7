package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/alejandrodnm/polysim/internal/adapters/storage"
	"github.com/alejandrodnm/polysim/internal/metrics"
)

func openProfileStore(ctx context.Context, a *app, profile string) (storage.Store, error) {
	opts := a.cfg.Storage.Resolve(profile)
	store, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open storage for %s: %w", profile, err)
	}
	return store, nil
}

// runWatch llama a settle en cada tick hasta Ctrl+C o hasta que aparece el STOP file.
func (a *app) runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", a.cfg.WatchInterval(), "time between settle passes")
	all := fs.Bool("all", false, "reconcile every stored profile")
	metricsAddr := fs.String("metrics", a.cfg.Metrics.Addr, "serve /metrics and /healthz on this address (empty = off)")
	stopFile := fs.String("stop-file", a.cfg.Watch.StopFile, "exit when this file appears")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("watch: interval must be positive, got %s", *interval)
	}

	// healthy mientras la última pasada completa no sea más vieja que 3 intervalos.
	var lastOK atomic.Int64
	lastOK.Store(time.Now().Unix())
	maxAge := 3 * *interval
	if *metricsAddr != "" {
		srv := metrics.StartServer(*metricsAddr, func(context.Context) error {
			age := time.Since(time.Unix(lastOK.Load(), 0))
			if age > maxAge {
				return fmt.Errorf("last successful pass %s ago", age.Round(time.Second))
			}
			return nil
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("metrics server listening", "addr", *metricsAddr)
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	slog.Info("watch started, press Ctrl+C or create the stop file to exit",
		"profile", a.profile,
		"all", *all,
		"interval", *interval,
		"stop_file", *stopFile,
	)

	pass := func() {
		if err := a.settleOnce(ctx, *all); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("settle pass failed", "err", err)
			return
		}
		lastOK.Store(time.Now().Unix())
	}

	pass()
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped (signal)")
			return nil
		case <-ticker.C:
			if stopRequested(*stopFile) {
				slog.Info("stop file detected, shutting down watch")
				return nil
			}
			pass()
		}
	}
}

// stopRequested consume el STOP file si existe.
func stopRequested(path string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		slog.Warn("could not remove stop file", "path", path, "err", err)
	}
	return true
}
