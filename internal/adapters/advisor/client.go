// Package advisor pide recomendaciones de apuesta a un modelo OpenAI-compatible
// (DeepSeek por defecto) y decodifica su respuesta JSON.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"

	ModeFull  = "full"
	ModeQuick = "quick"

	// rawPrefixLen limita lo que se guarda de una respuesta que no parsea.
	rawPrefixLen = 200
)

const systemPrompt = `You are a sports betting analyst specializing in Polymarket prediction markets. Your task is to analyze sports matches and return a structured JSON response.

**1. Context Understanding:**
- Market type (Match Winner, Over/Under, Draws, Player Props)
- Current odds and volume
- Time until event settlement

**2. Core Analysis Framework:**
- Team/player recent form
- Head-to-head history
- Home/away performance splits
- Key injuries & suspensions
- Motivational factors

**3. Polymarket-Specific Considerations:**
- Liquidity check
- Time decay
- News sensitivity

**4. Final Output Format (JSON ONLY):**
You must return a valid JSON object with the following structure:
{
    "bets": [
        {
            "market_question": "The exact question of the market you are predicting (copy from input)",
            "prediction": "Yes/No/Team Name",
            "confidence": 0.0 to 1.0,
            "reasoning": "Brief reason",
            "fair_value": 0.0 to 1.0,
            "edge": "X%",
            "recommended_stake": "Low/Medium/High",
            "recommended_amount": 10.0
        }
    ],
    "summary": "Overall analysis summary"
}
`

const quickSuffix = "\nIMPORTANT: Provide a CONCISE summary and focus primarily on identifying the best bets. Keep reasoning short."

// Config holds client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client implementa ports.Advisor sobre go-openai.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// New crea un Client. La API key es obligatoria.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("advisor.New: API key is required (DEEPSEEK_API_KEY)")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	temp := cfg.Temperature
	if temp < 0 {
		temp = 0
	}

	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		api:         openai.NewClientWithConfig(oc),
		model:       model,
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
	}, nil
}

// Analyze manda la descripción del evento al modelo y decodifica las recomendaciones.
// Un error de transporte se devuelve; una respuesta que no es JSON válido produce
// un Analysis con Error y Raw rellenos y err == nil.
func (c *Client) Analyze(ctx context.Context, details string, mode string) (domain.Analysis, error) {
	if strings.TrimSpace(details) == "" {
		return domain.Analysis{}, fmt.Errorf("advisor.Analyze: empty market details")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildPrompt(mode)},
			{Role: openai.ChatMessageRoleUser, Content: "Analyze this Polymarket event and return JSON:\n\n" + details},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("advisor.Analyze: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Analysis{}, fmt.Errorf("advisor.Analyze: empty response")
	}
	slog.Debug("advisor response", "model", c.model, "mode", mode, "elapsed", time.Since(start),
		"tokens", resp.Usage.TotalTokens)

	return ParseAnalysis(resp.Choices[0].Message.Content), nil
}

func buildPrompt(mode string) string {
	if mode == ModeQuick {
		return systemPrompt + quickSuffix
	}
	return systemPrompt
}

// ParseAnalysis decodifica el contenido del modelo, quitando los fences de markdown.
func ParseAnalysis(content string) domain.Analysis {
	cleaned := stripFences(content)

	var a domain.Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		slog.Warn("advisor returned unparseable output", "err", err)
		return domain.Analysis{
			Error: "Failed to parse AI response",
			Raw:   truncate(cleaned, rawPrefixLen),
		}
	}
	return a
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
