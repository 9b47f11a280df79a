package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPriceChart(t *testing.T) {
	png, err := RenderPriceChart("AAPL", testCandles(60), 20)
	require.NoError(t, err)

	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestRenderPriceChartShortSeries(t *testing.T) {
	// Too few candles for an SMA overlay still renders the close series.
	png, err := RenderPriceChart("AAPL", testCandles(5), 20)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestRenderPriceChartInsufficientData(t *testing.T) {
	_, err := RenderPriceChart("AAPL", testCandles(1), 20)
	assert.Error(t, err)
}
