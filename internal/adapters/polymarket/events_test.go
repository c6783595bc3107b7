package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polysim/internal/adapters/polymarket"
	"github.com/alejandrodnm/polysim/internal/domain"
)

func TestFetchEvents_MergesAndDeduplicates(t *testing.T) {
	data := fixture(t, "gamma_events.json")
	var tags []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("closed"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		tags = append(tags, r.URL.Query().Get("tag_id"))
		w.Write(data)
	}))
	defer srv.Close()

	events, err := polymarket.NewClient(srv.URL).FetchEvents(context.Background(), []string{"745", "450"}, 50)
	require.NoError(t, err)

	assert.Equal(t, []string{"745", "450"}, tags)
	require.Len(t, events, 2, "same events from both tags are merged")
	assert.Equal(t, "9001", events[0].ID)
	assert.Equal(t, "9002", events[1].ID)
	require.Len(t, events[1].Markets, 1)
	assert.Equal(t, "512399", events[1].Markets[0].ID)
	assert.Equal(t, "0.61", events[1].Markets[0].Prices[0].String())
}

func TestFetchEvents_NoTagOmitsParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["tag_id"]
		assert.False(t, ok)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	events, err := polymarket.NewClient(srv.URL).FetchEvents(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFetchEvents_FailingTagSkipped(t *testing.T) {
	data := fixture(t, "gamma_events.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tag_id") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	events, err := polymarket.NewClient(srv.URL).SetRetries(0).
		FetchEvents(context.Background(), []string{"bad", "745"}, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFetchEvents_AllTagsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := polymarket.NewClient(srv.URL).SetRetries(0).FetchEvents(context.Background(), []string{"1"}, 10)
	assert.Error(t, err)
}

func eventEnding(id string, end time.Time, marketEnds ...time.Time) domain.Event {
	e := domain.Event{ID: id, EndDate: end}
	for _, me := range marketEnds {
		e.Markets = append(e.Markets, domain.MarketDetails{EndDate: me})
	}
	if len(marketEnds) == 0 {
		e.Markets = []domain.MarketDetails{{}}
	}
	return e
}

func ids(events []domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterEvents(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{
		eventEnding("tomorrow", now.Add(20*time.Hour)),
		eventEnding("in-five-days", now.Add(5*24*time.Hour)),
		eventEnding("past", now.Add(-time.Hour)),
		eventEnding("market-date-only", time.Time{}, now.Add(30*time.Hour), now.Add(2*time.Hour)),
		{ID: "no-markets", EndDate: now.Add(time.Hour)},
		eventEnding("no-dates", time.Time{}),
		eventEnding("may-20", time.Date(2026, 5, 20, 3, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		timeframe string
		want      []string
	}{
		{"1d", []string{"tomorrow", "market-date-only"}},
		{"1w", []string{"tomorrow", "in-five-days", "market-date-only"}},
		{"2026-05-20", []string{"may-20"}},
		{"2026-05-02", []string{"tomorrow", "market-date-only"}},
	}
	for _, tt := range tests {
		t.Run(tt.timeframe, func(t *testing.T) {
			got, err := polymarket.FilterEvents(events, tt.timeframe, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterEvents_InvalidTimeframe(t *testing.T) {
	_, err := polymarket.FilterEvents(nil, "next tuesday", time.Now())
	assert.Error(t, err)
}
