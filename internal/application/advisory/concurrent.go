package advisory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// EventAnalysis es el resultado del advisor para un evento.
type EventAnalysis struct {
	Event    domain.Event
	Analysis domain.Analysis
	Err      error
}

// AnalyzeAll analiza los eventos con un worker pool y devuelve los resultados en
// el mismo orden de entrada. Las llamadas al modelo son lentas e independientes;
// la colocación posterior en el ledger sigue siendo secuencial.
//
// Si workers <= 0 se usa 1. Un ctx cancelado deja los eventos pendientes con Err = ctx.Err().
func (s *Service) AnalyzeAll(ctx context.Context, events []domain.Event, mode string, workers int) []EventAnalysis {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(events) {
		workers = len(events)
	}

	results := make([]EventAnalysis, len(events))
	for i, ev := range events {
		results[i].Event = ev
	}

	workCh := make(chan int, len(events))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				a, err := s.Analyze(ctx, results[i].Event, mode)
				if err != nil {
					slog.Debug("analyze failed", "event_id", results[i].Event.ID, "err", err)
				}
				results[i].Analysis, results[i].Err = a, err
			}
		}()
	}

	for i := range events {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	return results
}
