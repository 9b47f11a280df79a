package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/quanta/internal/models"
)

// AnalysisService orchestrates data retrieval and the analysis engines
type AnalysisService interface {
	// GetMarketData returns candles and fundamentals for a ticker,
	// refreshing the cache from the provider when stale
	GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error)

	// GetEtfHoldings resolves top holdings for a list of ETF tickers
	GetEtfHoldings(ctx context.Context, tickers []string) ([]models.EtfHoldings, error)

	// GetQuote returns a real-time price snapshot straight from the
	// provider, bypassing the cache
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// RenderChart renders a price chart PNG with SMA and Bollinger overlays
	RenderChart(ctx context.Context, ticker string, period int) ([]byte, error)

	// RunConsensus generates analyst notes, extracts signals from each in
	// parallel, and aggregates them into a consensus report
	RunConsensus(ctx context.Context, ticker string) (*models.ConsensusReport, error)

	// ExtractNoteText pulls plain text from an uploaded PDF analyst note
	ExtractNoteText(r io.ReaderAt, size int64) (string, error)
}
