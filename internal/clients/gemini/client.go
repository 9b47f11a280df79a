// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
)

const DefaultModel = "gemini-2.0-flash"

// analystPersonas maps analyst IDs to the perspective each note should
// be written from. Unknown IDs fall back to a generalist brief.
var analystPersonas = map[string]string{
	"momentum":   "a momentum analyst focused on trend strength, breakouts, and relative performance",
	"value":      "a value analyst focused on whether the current price over- or under-states fair value",
	"technical":  "a chart technician focused on support, resistance, and classical chart patterns",
	"contrarian": "a contrarian analyst who looks for crowded positioning and overextended moves",
}

const defaultPersona = "a generalist market analyst"

// Client implements the CommentaryClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// GenerateNote generates analyst persona commentary for a ticker.
func (c *Client) GenerateNote(ctx context.Context, analystID string, ticker string, data *models.MarketData) (string, error) {
	c.logger.Debug().
		Str("model", c.model).
		Str("analyst", analystID).
		Str("ticker", ticker).
		Msg("Generating analyst note")

	prompt := buildNotePrompt(analystID, ticker, data)

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate analyst note: %w", err)
	}

	return extractTextFromResponse(result)
}

// buildNotePrompt creates a persona-framed prompt from the market data
// snapshot. The indicator summary is computed locally so the model reacts
// to the same numbers the dashboard shows.
func buildNotePrompt(analystID, ticker string, data *models.MarketData) string {
	persona, ok := analystPersonas[analystID]
	if !ok {
		persona = defaultPersona
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s. Write a short research note (3-5 sentences) on %s.\n", persona, ticker)
	sb.WriteString("State a directional view, name any chart patterns you see, and give support, resistance, and a price target where justified.\n")

	if data != nil && len(data.Candles) > 0 {
		last := data.Candles[len(data.Candles)-1]
		fmt.Fprintf(&sb, "\nLatest close: %.2f on %s over %d sessions.\n",
			last.Close, last.Time.Format("2006-01-02"), len(data.Candles))

		if sma := quant.SMA(data.Candles, 20); len(sma) > 0 {
			fmt.Fprintf(&sb, "SMA(20): %.2f\n", sma[len(sma)-1].Value)
		}
		if sma := quant.SMA(data.Candles, 50); len(sma) > 0 {
			fmt.Fprintf(&sb, "SMA(50): %.2f\n", sma[len(sma)-1].Value)
		}
		if rsi := quant.RSI(data.Candles, 14); len(rsi) > 0 {
			fmt.Fprintf(&sb, "RSI(14): %.1f\n", rsi[len(rsi)-1].Value)
		}
		if macd := quant.MACD(data.Candles, 12, 26, 9); len(macd.Histogram) > 0 {
			fmt.Fprintf(&sb, "MACD histogram: %.3f\n", macd.Histogram[len(macd.Histogram)-1].Value)
		}
	}

	if data != nil && data.Fundamentals != nil {
		if data.Fundamentals.Sector != "" {
			fmt.Fprintf(&sb, "Sector: %s\n", data.Fundamentals.Sector)
		}
		if data.Fundamentals.Industry != "" {
			fmt.Fprintf(&sb, "Industry: %s\n", data.Fundamentals.Industry)
		}
	}

	sb.WriteString("\nWrite in plain prose without markdown formatting.")
	return sb.String()
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements CommentaryClient
var _ interfaces.CommentaryClient = (*Client)(nil)
