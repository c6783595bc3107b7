package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const defaultEventLimit = 20

// FetchEvents trae eventos abiertos de GET /events, uno por tag, y los
// deduplica por ID manteniendo el primer orden visto. Sin tags trae el feed general.
// Un tag que falla se loguea y se salta.
func (c *Client) FetchEvents(ctx context.Context, tagIDs []string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if len(tagIDs) == 0 {
		tagIDs = []string{""}
	}

	seen := make(map[string]bool)
	var out []domain.Event
	var lastErr error
	failed := 0

	for _, tid := range tagIDs {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))
		params.Set("closed", "false")
		if tid != "" {
			params.Set("tag_id", tid)
		}

		var raw []gammaEvent
		if err := c.get(ctx, c.gammaBase+"/events?"+params.Encode(), &raw); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("polymarket.FetchEvents: %w", ctx.Err())
			}
			slog.Warn("error fetching events", "tag", tid, "err", err)
			lastErr = err
			failed++
			continue
		}

		for _, re := range raw {
			e := mapEvent(re)
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}

	if failed == len(tagIDs) {
		return nil, fmt.Errorf("polymarket.FetchEvents: all %d requests failed: %w", failed, lastErr)
	}
	return out, nil
}

// Timeframes aceptados por FilterEvents además de una fecha YYYY-MM-DD.
const (
	TimeframeDay  = "1d"
	TimeframeWeek = "1w"
)

// FilterEvents deja los eventos con algún mercado y alguna fecha de cierre
// (la del evento o la de cualquier mercado) dentro del timeframe.
// 1d y 1w son ventanas [now, now+d]; YYYY-MM-DD compara el día en la zona de now.
func FilterEvents(events []domain.Event, timeframe string, now time.Time) ([]domain.Event, error) {
	var (
		until    time.Time
		day      time.Time
		specific bool
	)
	switch timeframe {
	case TimeframeDay:
		until = now.Add(24 * time.Hour)
	case TimeframeWeek:
		until = now.Add(7 * 24 * time.Hour)
	default:
		t, err := time.ParseInLocation("2006-01-02", timeframe, now.Location())
		if err != nil {
			return nil, fmt.Errorf("polymarket.FilterEvents: invalid timeframe %q: %w", timeframe, err)
		}
		day = t
		specific = true
	}

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if len(e.Markets) == 0 {
			continue
		}
		candidates := make([]time.Time, 0, len(e.Markets)+1)
		if !e.EndDate.IsZero() {
			candidates = append(candidates, e.EndDate)
		}
		for _, m := range e.Markets {
			if !m.EndDate.IsZero() {
				candidates = append(candidates, m.EndDate)
			}
		}

		for _, t := range candidates {
			if specific {
				local := t.In(now.Location())
				if local.Year() == day.Year() && local.YearDay() == day.YearDay() {
					out = append(out, e)
					break
				}
				continue
			}
			if !t.Before(now) && !t.After(until) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}
