package analysis

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
)

// RenderChart renders a price chart PNG for a ticker: closing price with
// an SMA overlay and Bollinger Bands at the given period.
func (s *Service) RenderChart(ctx context.Context, ticker string, period int) ([]byte, error) {
	data, err := s.GetMarketData(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return RenderPriceChart(ticker, data.Candles, period)
}

// RenderPriceChart renders the chart from a candle series. Returns raw
// PNG bytes.
func RenderPriceChart(ticker string, candles []models.Candle, period int) ([]byte, error) {
	if len(candles) < 2 {
		return nil, fmt.Errorf("need at least 2 candles, got %d", len(candles))
	}
	if period <= 0 {
		period = 20
	}

	closeX := make([]time.Time, len(candles))
	closeY := make([]float64, len(candles))
	for i, c := range candles {
		closeX[i] = c.Time
		closeY[i] = c.Close
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.0,
			},
			XValues: closeX,
			YValues: closeY,
		},
	}

	if sma := quant.SMA(candles, period); len(sma) >= 2 {
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA(%d)", period),
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("f59e0b"), // amber-500
				StrokeWidth: 1.5,
			},
			XValues: indicatorTimes(sma),
			YValues: indicatorValues(sma),
		})
	}

	if bands := quant.BollingerBands(candles, period, 2); len(bands.Upper) >= 2 {
		bandStyle := chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{5.0, 3.0},
		}
		series = append(series,
			chart.TimeSeries{
				Name:    "Upper Band",
				Style:   bandStyle,
				XValues: indicatorTimes(bands.Upper),
				YValues: indicatorValues(bands.Upper),
			},
			chart.TimeSeries{
				Name:    "Lower Band",
				Style:   bandStyle,
				XValues: indicatorTimes(bands.Lower),
				YValues: indicatorValues(bands.Lower),
			},
		)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func indicatorTimes(points []models.IndicatorPoint) []time.Time {
	out := make([]time.Time, len(points))
	for i, p := range points {
		out[i] = p.Time
	}
	return out
}

func indicatorValues(points []models.IndicatorPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
