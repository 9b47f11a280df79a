package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/models"
)

func TestExtractSignalsBullish(t *testing.T) {
	text := "Strong bullish breakout above resistance at 150. Expect a rally toward the upside target of 165."
	result := ExtractSignals("morgan", text)

	assert.Equal(t, "morgan", result.AnalystID)
	assert.Equal(t, models.SentimentBullish, result.Sentiment)
	// base 50 + one high-confidence hit ("strong").
	assert.InDelta(t, 60.0, result.Confidence, 1e-9)
	assert.Equal(t, []string{"breakout"}, result.Patterns)
	assert.Empty(t, result.KeyLevels.Support)
	assert.Equal(t, []float64{150}, result.KeyLevels.Resistance)
	require.NotNil(t, result.PriceTargets.Upside)
	assert.InDelta(t, 165.0, *result.PriceTargets.Upside, 1e-9)
	assert.Nil(t, result.PriceTargets.Downside)
}

func TestExtractSignalsBearish(t *testing.T) {
	text := "Bearish breakdown below support at 90. Sell into weakness; downside target of 80 is possible."
	result := ExtractSignals("kd", text)

	assert.Equal(t, models.SentimentBearish, result.Sentiment)
	// base 50 - two low-confidence hits ("weak" in weakness, "possible").
	assert.InDelta(t, 30.0, result.Confidence, 1e-9)
	assert.Equal(t, []string{"breakdown"}, result.Patterns)
	assert.Equal(t, []float64{90}, result.KeyLevels.Support)
	require.NotNil(t, result.PriceTargets.Downside)
	assert.InDelta(t, 80.0, *result.PriceTargets.Downside, 1e-9)
	assert.Nil(t, result.PriceTargets.Upside)
}

func TestExtractSignalsNeutralConfidenceCap(t *testing.T) {
	// Three high-confidence hits would push confidence to 80, but a
	// neutral read caps it at 60.
	text := "Clear consolidation; the stock is range-bound and choppy. Strong volume but no clear direction. Hold."
	result := ExtractSignals("sam", text)

	assert.Equal(t, models.SentimentNeutral, result.Sentiment)
	assert.InDelta(t, 60.0, result.Confidence, 1e-9)
}

func TestExtractSignalsSentimentTieRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Sentiment
	}{
		{
			name: "dead directional tie reads neutral",
			text: "Bullish momentum but bearish divergence.",
			want: models.SentimentNeutral,
		},
		{
			name: "directional counts within one read neutral",
			text: "Bullish rally despite the correction.",
			want: models.SentimentNeutral,
		},
		{
			name: "clear directional lead wins",
			text: "Bullish rally and breakout despite the correction.",
			want: models.SentimentBullish,
		},
		{
			name: "empty text is neutral",
			text: "",
			want: models.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSignals("x", tt.text).Sentiment)
		})
	}
}

func TestExtractSignalsCountsOccurrences(t *testing.T) {
	// Repeated keywords count per occurrence, not per keyword.
	result := ExtractSignals("x", "Buy, buy, and buy again. One analyst says sell.")
	assert.Equal(t, models.SentimentBullish, result.Sentiment)
}

func TestExtractSignalsLevels(t *testing.T) {
	text := "Watch support at 100 and support near 95. Support at 100 held. Resistance around 120, then resistance at 110."
	result := ExtractSignals("x", text)

	// Deduplicated; support descending, resistance ascending.
	assert.Equal(t, []float64{100, 95}, result.KeyLevels.Support)
	assert.Equal(t, []float64{110, 120}, result.KeyLevels.Resistance)
}

func TestExtractSignalsFirstTargetWins(t *testing.T) {
	text := "Price target of 150 looks fair, though some see a target price of 160."
	result := ExtractSignals("x", text)

	require.NotNil(t, result.PriceTargets.Upside)
	assert.InDelta(t, 150.0, *result.PriceTargets.Upside, 1e-9)
}

func TestExtractSignalsPatternsInCatalogueOrder(t *testing.T) {
	result := ExtractSignals("x", "A doji appeared right after the double bottom completed.")
	assert.Equal(t, []string{"double bottom", "doji"}, result.Patterns)
}

func TestExtractSignalsEmptyText(t *testing.T) {
	result := ExtractSignals("x", "")

	assert.Equal(t, models.SentimentNeutral, result.Sentiment)
	assert.InDelta(t, 50.0, result.Confidence, 1e-9)
	assert.Empty(t, result.Patterns)
	assert.Empty(t, result.KeyLevels.Support)
	assert.Empty(t, result.KeyLevels.Resistance)
	assert.Nil(t, result.PriceTargets.Upside)
	assert.Nil(t, result.PriceTargets.Downside)
}

func TestExtractSignalsConfidenceClamped(t *testing.T) {
	result := ExtractSignals("x", "weak weak weak weak weak weak weak")
	assert.InDelta(t, 0.0, result.Confidence, 1e-9)
}
