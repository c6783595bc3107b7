// Package metrics provides Prometheus instrumentation for the ledger.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BetsPlaced counts accepted bets per profile.
	BetsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polysim_bets_placed_total",
		Help: "Total number of simulated bets placed",
	}, []string{"profile"})

	// BetsRejected counts ledger validation failures by message.
	BetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polysim_ledger_rejections_total",
		Help: "Ledger operations rejected by validation",
	}, []string{"op", "reason"})

	// BetsSettled counts OPEN → WON/LOST transitions.
	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polysim_bets_settled_total",
		Help: "Bets settled by the reconciler",
	}, []string{"status"})

	// StorageFailures counts swallowed persistence errors.
	StorageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polysim_storage_failures_total",
		Help: "Persistence backend failures (load or save)",
	}, []string{"op"})

	// ReconcilePasses counts update_results invocations.
	ReconcilePasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polysim_reconcile_passes_total",
		Help: "Settlement reconciliation passes",
	})

	// ReconcileMutations counts bets mutated by reconciliation.
	ReconcileMutations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polysim_reconcile_mutations_total",
		Help: "Bets repriced or settled by reconciliation",
	})

	// LookupFailures counts market lookups skipped during reconciliation.
	LookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polysim_market_lookup_failures_total",
		Help: "Market lookups that failed during reconciliation",
	})
)

// HealthFunc reports whether the process can serve.
type HealthFunc func(ctx context.Context) error

// Handler serves /metrics and /healthz.
func Handler(healthFn HealthFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, "unhealthy: %v", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// StartServer exposes Handler on addr in a background goroutine.
func StartServer(addr string, healthFn HealthFunc) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(healthFn),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	return srv
}
