package advisor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polysim/internal/adapters/advisor"
)

const modelJSON = "```json\n" + `{
  "bets": [
    {
      "market_question": "Will the Lakers beat the Celtics?",
      "prediction": "Yes",
      "confidence": 0.62,
      "reasoning": "Home form",
      "fair_value": 0.55,
      "edge": "12%",
      "recommended_stake": "Medium",
      "recommended_amount": 25.5
    }
  ],
  "summary": "Lakers slight value"
}` + "\n```"

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, content string, got *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "deepseek-chat",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *advisor.Client {
	t.Helper()
	c, err := advisor.New(advisor.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := advisor.New(advisor.Config{APIKey: "  "})
	assert.Error(t, err)
}

func TestAnalyze_Full(t *testing.T) {
	var req capturedRequest
	c := newClient(t, chatServer(t, modelJSON, &req))

	a, err := c.Analyze(context.Background(), "Event: Lakers vs Celtics", advisor.ModeFull)
	require.NoError(t, err)

	assert.Equal(t, advisor.DefaultModel, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.NotContains(t, req.Messages[0].Content, "CONCISE")
	assert.Contains(t, req.Messages[1].Content, "Lakers vs Celtics")

	assert.Empty(t, a.Error)
	assert.Equal(t, "Lakers slight value", a.Summary)
	require.Len(t, a.Bets, 1)
	b := a.Bets[0]
	assert.Equal(t, "Will the Lakers beat the Celtics?", b.MarketQuestion)
	assert.Equal(t, "Yes", b.Prediction)
	assert.InDelta(t, 0.62, b.Confidence, 1e-9)
	assert.True(t, b.RecommendedAmount.Equal(decimal.RequireFromString("25.5")))
}

func TestAnalyze_QuickModeAddsSuffix(t *testing.T) {
	var req capturedRequest
	c := newClient(t, chatServer(t, `{"bets": [], "summary": "none"}`, &req))

	_, err := c.Analyze(context.Background(), "details", advisor.ModeQuick)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(req.Messages[0].Content, "Keep reasoning short."))
}

func TestAnalyze_UnparseableOutput(t *testing.T) {
	c := newClient(t, chatServer(t, "Sorry, I cannot help with that.", nil))

	a, err := c.Analyze(context.Background(), "details", advisor.ModeFull)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Error)
	assert.Equal(t, "Sorry, I cannot help with that.", a.Raw)
	assert.Empty(t, a.Bets)
}

func TestAnalyze_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key", "type": "auth"}}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv).Analyze(context.Background(), "details", advisor.ModeFull)
	assert.Error(t, err)
}

func TestAnalyze_EmptyDetails(t *testing.T) {
	c, err := advisor.New(advisor.Config{APIKey: "k"})
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), " ", advisor.ModeFull)
	assert.Error(t, err)
}

func TestParseAnalysis_TruncatesRaw(t *testing.T) {
	a := advisor.ParseAnalysis(strings.Repeat("x", 500))
	assert.Len(t, a.Raw, 200)
}
