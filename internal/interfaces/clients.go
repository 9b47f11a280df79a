// Package interfaces defines the contracts between Quanta's layers.
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/quanta/internal/models"
)

// CandleParams holds query parameters for candle requests
type CandleParams struct {
	From   time.Time
	To     time.Time
	Period string // "d", "w", "m"
}

// CandleOption configures a candle request
type CandleOption func(*CandleParams)

// WithDateRange restricts candles to [from, to]
func WithDateRange(from, to time.Time) CandleOption {
	return func(p *CandleParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the bar period
func WithPeriod(period string) CandleOption {
	return func(p *CandleParams) {
		p.Period = period
	}
}

// MarketDataClient fetches market data from an external provider
type MarketDataClient interface {
	// GetCandles returns OHLCV bars in ascending time order
	GetCandles(ctx context.Context, ticker string, opts ...CandleOption) ([]models.Candle, error)

	// GetFundamentals returns company or fund reference data,
	// including top holdings when the instrument is an ETF
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)

	// GetQuote returns a real-time price snapshot
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)
}

// CommentaryClient generates analyst persona commentary for a ticker
type CommentaryClient interface {
	GenerateNote(ctx context.Context, analystID string, ticker string, data *models.MarketData) (string, error)
}
