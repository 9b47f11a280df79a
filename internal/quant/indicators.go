// Package quant provides the pure analysis engines: technical
// indicators, ETF overlap, portfolio exposure, sector breakdown, and
// analyst-text consensus. Every function is deterministic, never
// mutates its input, and returns an empty result rather than an error
// when the input is insufficient.
package quant

import (
	"math"

	"github.com/bobmcallan/quanta/internal/models"
)

// SMA calculates the Simple Moving Average of closes over the trailing
// period. The first point aligns to candle index period-1; subsequent
// points update the running sum incrementally, which keeps the pass
// O(n). A full-window reduction every step would also be correct but
// rounds differently around the 15th digit, so comparisons use a
// tolerance, not bit equality.
func SMA(data []models.Candle, period int) []models.IndicatorPoint {
	if period <= 0 || len(data) < period {
		return []models.IndicatorPoint{}
	}

	out := make([]models.IndicatorPoint, 0, len(data)-period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i].Close
	}
	out = append(out, models.IndicatorPoint{Time: data[period-1].Time, Value: sum / float64(period)})

	for i := period; i < len(data); i++ {
		sum += data[i].Close - data[i-period].Close
		out = append(out, models.IndicatorPoint{Time: data[i].Time, Value: sum / float64(period)})
	}

	return out
}

// EMA calculates the Exponential Moving Average with smoothing constant
// k = 2/(period+1). The seed is the SMA of the first period closes, so
// the first point aligns to candle index period-1.
func EMA(data []models.Candle, period int) []models.IndicatorPoint {
	if period <= 0 || len(data) < period {
		return []models.IndicatorPoint{}
	}

	k := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += data[i].Close
	}
	seed /= float64(period)

	out := make([]models.IndicatorPoint, 0, len(data)-period+1)
	out = append(out, models.IndicatorPoint{Time: data[period-1].Time, Value: seed})

	prev := seed
	for i := period; i < len(data); i++ {
		v := data[i].Close*k + prev*(1-k)
		out = append(out, models.IndicatorPoint{Time: data[i].Time, Value: v})
		prev = v
	}

	return out
}

// BollingerBands calculates the middle (SMA), upper, and lower bands.
// Sigma is the population standard deviation of each window's closes
// (divide by period, not period-1).
func BollingerBands(data []models.Candle, period int, stdDevMultiplier float64) models.BollingerSeries {
	middle := SMA(data, period)
	upper := make([]models.IndicatorPoint, len(middle))
	lower := make([]models.IndicatorPoint, len(middle))

	for w := range middle {
		m := middle[w].Value
		var ss float64
		for i := w; i < w+period; i++ {
			d := data[i].Close - m
			ss += d * d
		}
		sigma := math.Sqrt(ss / float64(period))

		upper[w] = models.IndicatorPoint{Time: middle[w].Time, Value: m + stdDevMultiplier*sigma}
		lower[w] = models.IndicatorPoint{Time: middle[w].Time, Value: m - stdDevMultiplier*sigma}
	}

	return models.BollingerSeries{Upper: upper, Middle: middle, Lower: lower}
}

// RSI calculates the Relative Strength Index using Wilder's method:
// the initial average gain/loss is a simple mean of the first period
// deltas, and subsequent averages use Wilder smoothing
// avg = (avg*(period-1) + new) / period. The first output aligns to
// candle index period.
func RSI(data []models.Candle, period int) []models.IndicatorPoint {
	if period <= 0 || len(data) < period+1 {
		return []models.IndicatorPoint{}
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		delta := data[i].Close - data[i-1].Close
		gains += math.Max(delta, 0)
		losses += math.Max(-delta, 0)
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	out := make([]models.IndicatorPoint, 0, len(data)-period)
	out = append(out, models.IndicatorPoint{Time: data[period].Time, Value: rsiValue(avgGain, avgLoss)})

	for i := period + 1; i < len(data); i++ {
		delta := data[i].Close - data[i-1].Close
		avgGain = (avgGain*float64(period-1) + math.Max(delta, 0)) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + math.Max(-delta, 0)) / float64(period)
		out = append(out, models.IndicatorPoint{Time: data[i].Time, Value: rsiValue(avgGain, avgLoss)})
	}

	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD calculates Moving Average Convergence Divergence. The fast EMA
// starts earlier than the slow one, so the two series are aligned by
// calendar time with offset = slow-fast before subtracting. The signal
// line is an EMA of the MACD values, seeded the same way as a plain
// EMA (the warm-up entries are dropped). The histogram is emitted only
// where the signal is valid, and equals macd - signal at every aligned
// point.
func MACD(data []models.Candle, fastPeriod, slowPeriod, signalPeriod int) models.MACDSeries {
	empty := models.MACDSeries{
		MACD:      []models.IndicatorPoint{},
		Signal:    []models.IndicatorPoint{},
		Histogram: []models.IndicatorPoint{},
	}
	if fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 || len(data) < slowPeriod {
		return empty
	}

	fastEMA := EMA(data, fastPeriod)
	slowEMA := EMA(data, slowPeriod)
	offset := slowPeriod - fastPeriod

	macd := make([]models.IndicatorPoint, len(slowEMA))
	for i := range slowEMA {
		macd[i] = models.IndicatorPoint{
			Time:  slowEMA[i].Time,
			Value: fastEMA[i+offset].Value - slowEMA[i].Value,
		}
	}

	signal := emaOverPoints(macd, signalPeriod)

	histogram := make([]models.IndicatorPoint, len(signal))
	for i := range signal {
		histogram[i] = models.IndicatorPoint{
			Time:  signal[i].Time,
			Value: macd[i+signalPeriod-1].Value - signal[i].Value,
		}
	}

	return models.MACDSeries{MACD: macd, Signal: signal, Histogram: histogram}
}

// emaOverPoints applies an EMA to an already-computed indicator series,
// seeding from the SMA of the first period values.
func emaOverPoints(points []models.IndicatorPoint, period int) []models.IndicatorPoint {
	if period <= 0 || len(points) < period {
		return []models.IndicatorPoint{}
	}

	k := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += points[i].Value
	}
	seed /= float64(period)

	out := make([]models.IndicatorPoint, 0, len(points)-period+1)
	out = append(out, models.IndicatorPoint{Time: points[period-1].Time, Value: seed})

	prev := seed
	for i := period; i < len(points); i++ {
		v := points[i].Value*k + prev*(1-k)
		out = append(out, models.IndicatorPoint{Time: points[i].Time, Value: v})
		prev = v
	}

	return out
}
